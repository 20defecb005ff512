package command

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestGate() (*CooldownGate, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	gate := NewCooldownGate()
	gate.SetClock(clock.now)
	return gate, clock
}

func TestCooldownCheckAndCommit(t *testing.T) {
	gate, clock := newTestGate()

	if remaining := gate.Check("work", "alice"); remaining != 0 {
		t.Fatalf("fresh gate should allow, got %v", remaining)
	}

	gate.Commit("work", "alice", time.Minute)
	if remaining := gate.Check("work", "alice"); remaining != time.Minute {
		t.Fatalf("got %v want 1m", remaining)
	}

	clock.advance(30 * time.Second)
	if remaining := gate.Check("work", "alice"); remaining != 30*time.Second {
		t.Fatalf("got %v want 30s", remaining)
	}

	clock.advance(30 * time.Second)
	if remaining := gate.Check("work", "alice"); remaining != 0 {
		t.Fatalf("expired entry should allow, got %v", remaining)
	}
}

func TestCooldownIsPerCommandPerUser(t *testing.T) {
	gate, _ := newTestGate()
	gate.Commit("work", "alice", time.Minute)

	if remaining := gate.Check("work", "bob"); remaining != 0 {
		t.Fatalf("bob should not share alice's cooldown, got %v", remaining)
	}
	if remaining := gate.Check("flip", "alice"); remaining != 0 {
		t.Fatalf("flip should not share work's cooldown, got %v", remaining)
	}
}

func TestCooldownCaseInsensitiveKey(t *testing.T) {
	gate, _ := newTestGate()
	gate.Commit("Work", "Alice", time.Minute)
	if remaining := gate.Check("work", "alice"); remaining == 0 {
		t.Fatal("case variations should hit the same entry")
	}
}

func TestCommitZeroIsNoop(t *testing.T) {
	gate, _ := newTestGate()
	gate.Commit("ping", "alice", 0)
	gate.Commit("ping", "alice", -time.Second)
	if remaining := gate.Check("ping", "alice"); remaining != 0 {
		t.Fatalf("zero cooldown committed, got %v", remaining)
	}
}

func TestSweep(t *testing.T) {
	gate, clock := newTestGate()
	gate.Commit("work", "alice", time.Minute)
	gate.Commit("work", "bob", 3*time.Minute)

	clock.advance(2 * time.Minute)
	if n := gate.Sweep(); n != 1 {
		t.Fatalf("swept %d want 1", n)
	}
	if remaining := gate.Check("work", "bob"); remaining != time.Minute {
		t.Fatalf("bob's entry should survive, got %v", remaining)
	}
}
