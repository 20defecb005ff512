package command

import (
	"errors"
	"strings"
	"testing"
	"time"

	"pursebot/internal/config"

	"github.com/rs/zerolog"
)

func testConfig() *config.Config {
	return &config.Config{
		Prefix:    "*",
		Admins:    []string{"root"},
		Cooldowns: map[string]int{},
	}
}

func newTestDispatcher(t *testing.T, cfg *config.Config) (*Dispatcher, *Registry, *CooldownGate, *fakeClock) {
	t.Helper()
	reg := NewRegistry()
	gate, clock := newTestGate()
	usage := NewUsageTracker(nil)
	d := NewDispatcher(reg, gate, usage, nil, Env{}, cfg, zerolog.Nop())
	return d, reg, gate, clock
}

func TestDispatchIgnoresNonCommands(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t, testConfig())
	if res := d.Dispatch("alice", "just chatting", time.Now()); res != nil {
		t.Fatalf("expected nil result, got %+v", res)
	}
	if res := d.Dispatch("alice", "*", time.Now()); res != nil {
		t.Fatalf("bare prefix should be ignored, got %+v", res)
	}
}

func TestFloodGateSkipsNonCommands(t *testing.T) {
	reg := NewRegistry()
	reg.Register(&Command{
		Name: "ping",
		Handler: func(*Context) (*Result, error) {
			return &Result{Success: true, Message: "pong"}, nil
		},
	})
	gate, _ := newTestGate()
	d := NewDispatcher(reg, gate, NewUsageTracker(nil), NewFloodGate(6, 2), Env{}, testConfig(), zerolog.Nop())

	// Chatter never consumes tokens and never draws a reply.
	for i := 0; i < 10; i++ {
		if res := d.Dispatch("alice", "good morning all", time.Now()); res != nil {
			t.Fatalf("chatter %d produced %+v", i, res)
		}
	}

	// The burst budget is still fully available for real commands.
	for i := 0; i < 2; i++ {
		res := d.Dispatch("alice", "*ping", time.Now())
		if res == nil || !res.Success {
			t.Fatalf("command %d: %+v", i, res)
		}
	}
	res := d.Dispatch("alice", "*ping", time.Now())
	if res == nil || res.Success || !strings.Contains(res.Message, "too fast") {
		t.Fatalf("over-budget command: %+v", res)
	}

	// Even while throttled, chatter stays silent.
	if res := d.Dispatch("alice", "still just chatting", time.Now()); res != nil {
		t.Fatalf("throttled chatter produced %+v", res)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t, testConfig())
	res := d.Dispatch("alice", "*wat", time.Now())
	if res == nil || res.Success {
		t.Fatalf("got %+v", res)
	}
	if !strings.Contains(res.Message, "unknown command") {
		t.Fatalf("message: %q", res.Message)
	}
}

func TestDispatchParseError(t *testing.T) {
	d, _, _, _ := newTestDispatcher(t, testConfig())
	res := d.Dispatch("alice", `*send "bob`, time.Now())
	if res == nil || res.Success {
		t.Fatalf("got %+v", res)
	}
	if !strings.Contains(res.Message, "could not parse") {
		t.Fatalf("message: %q", res.Message)
	}
}

func TestDispatchPermissionDenied(t *testing.T) {
	d, reg, _, _ := newTestDispatcher(t, testConfig())
	reg.Register(&Command{Name: "give", Permission: PermissionAdmin, Handler: testHandler})

	res := d.Dispatch("alice", "*give bob 10", time.Now())
	if res == nil || res.Success {
		t.Fatalf("got %+v", res)
	}
	if !strings.Contains(res.Message, "admin") {
		t.Fatalf("message: %q", res.Message)
	}
	if n := d.Usage().Count("give"); n != 1 {
		t.Fatalf("usage count %d want 1", n)
	}

	res = d.Dispatch("root", "*give bob 10", time.Now())
	if res == nil || !res.Success {
		t.Fatalf("admin should pass, got %+v", res)
	}
}

func TestDispatchAliasAndHandlerArgs(t *testing.T) {
	d, reg, _, _ := newTestDispatcher(t, testConfig())
	var gotUser string
	var gotArgs []string
	reg.Register(&Command{
		Name:    "balance",
		Aliases: []string{"bal"},
		Handler: func(ctx *Context) (*Result, error) {
			gotUser = ctx.User
			gotArgs = ctx.Args
			return &Result{Success: true, Message: "ok"}, nil
		},
	})

	res := d.Dispatch("alice", "*bal extra", time.Now())
	if res == nil || !res.Success {
		t.Fatalf("got %+v", res)
	}
	if gotUser != "alice" || len(gotArgs) != 1 || gotArgs[0] != "extra" {
		t.Fatalf("handler saw user=%q args=%v", gotUser, gotArgs)
	}
}

func TestCooldownCommittedOnlyOnSuccess(t *testing.T) {
	d, reg, _, clock := newTestDispatcher(t, testConfig())
	fail := true
	reg.Register(&Command{
		Name:     "flip",
		Cooldown: 30 * time.Second,
		Handler: func(*Context) (*Result, error) {
			if fail {
				return nil, errors.New("wager must be a positive number")
			}
			return &Result{Success: true, Message: "won"}, nil
		},
	})

	// A failed run must not start the cooldown.
	if res := d.Dispatch("alice", "*flip -5", time.Now()); res.Success {
		t.Fatalf("expected failure, got %+v", res)
	}
	fail = false
	if res := d.Dispatch("alice", "*flip 5", time.Now()); !res.Success {
		t.Fatalf("expected success, got %+v", res)
	}

	// Now the cooldown is armed.
	res := d.Dispatch("alice", "*flip 5", time.Now())
	if res.Success {
		t.Fatalf("expected cooldown rejection, got %+v", res)
	}
	if !strings.Contains(res.Message, "30 seconds") {
		t.Fatalf("message: %q", res.Message)
	}

	clock.advance(time.Minute)
	if res := d.Dispatch("alice", "*flip 5", time.Now()); !res.Success {
		t.Fatalf("cooldown should have expired, got %+v", res)
	}
}

func TestCooldownMessageUsesMinutes(t *testing.T) {
	d, reg, _, _ := newTestDispatcher(t, testConfig())
	reg.Register(&Command{
		Name:     "daily",
		Cooldown: 10 * time.Minute,
		Handler:  testHandler,
	})

	if res := d.Dispatch("alice", "*daily", time.Now()); !res.Success {
		t.Fatalf("got %+v", res)
	}
	res := d.Dispatch("alice", "*daily", time.Now())
	if res.Success {
		t.Fatalf("expected rejection, got %+v", res)
	}
	if !strings.Contains(res.Message, "10 minutes") {
		t.Fatalf("message: %q", res.Message)
	}
}

func TestConfigCooldownOverride(t *testing.T) {
	cfg := testConfig()
	cfg.Cooldowns["work"] = 120
	d, reg, gate, _ := newTestDispatcher(t, cfg)
	reg.Register(&Command{Name: "work", Cooldown: 5 * time.Second, Handler: testHandler})

	if res := d.Dispatch("alice", "*work", time.Now()); !res.Success {
		t.Fatalf("got %+v", res)
	}
	if remaining := gate.Check("work", "alice"); remaining != 2*time.Minute {
		t.Fatalf("override ignored: remaining %v want 2m", remaining)
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	d, reg, _, _ := newTestDispatcher(t, testConfig())
	reg.Register(&Command{
		Name: "boom",
		Handler: func(*Context) (*Result, error) {
			panic("kaboom")
		},
	})

	res := d.Dispatch("alice", "*boom", time.Now())
	if res == nil || res.Success {
		t.Fatalf("got %+v", res)
	}
	if !strings.Contains(res.Message, "internal error") {
		t.Fatalf("message: %q", res.Message)
	}
	// The dispatcher must survive for the next call.
	if res := d.Dispatch("alice", "*boom", time.Now()); res == nil {
		t.Fatal("dispatcher died after panic")
	}
}

func TestUsageCountsEveryResolvedAttempt(t *testing.T) {
	d, reg, _, _ := newTestDispatcher(t, testConfig())
	reg.Register(&Command{
		Name:     "work",
		Cooldown: time.Hour,
		Handler:  testHandler,
	})

	d.Dispatch("alice", "*work", time.Now())    // ok
	d.Dispatch("alice", "*work", time.Now())    // on cooldown
	d.Dispatch("alice", "*nothere", time.Now()) // unresolved, not counted

	if n := d.Usage().Count("work"); n != 2 {
		t.Fatalf("usage count %d want 2", n)
	}
	if n := d.Usage().Count("nothere"); n != 0 {
		t.Fatalf("unknown command counted: %d", n)
	}
}

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "1 second"},
		{time.Second, "1 second"},
		{45 * time.Second, "45 seconds"},
		{59 * time.Second, "59 seconds"},
		{60 * time.Second, "1 minute"},
		{61 * time.Second, "2 minutes"},
		{10 * time.Minute, "10 minutes"},
	}
	for _, tc := range cases {
		if got := formatRemaining(tc.d); got != tc.want {
			t.Fatalf("%v: got %q want %q", tc.d, got, tc.want)
		}
	}
}
