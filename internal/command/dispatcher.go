package command

import (
	"errors"
	"fmt"
	"math"
	"time"

	"pursebot/internal/config"
	"pursebot/internal/economy"
	"pursebot/internal/events"
	"pursebot/internal/games"

	"github.com/rs/zerolog"
)

// Dispatch outcome statuses, used for usage tracking and metrics labels.
const (
	StatusOK               = "ok"
	StatusHandlerError     = "handler_error"
	StatusPermissionDenied = "permission_denied"
	StatusOnCooldown       = "on_cooldown"
	StatusInternalError    = "internal_error"
)

// Env bundles the capabilities the dispatcher hands to handlers.
type Env struct {
	Economy   *economy.Engine
	Games     *games.Dealer
	Messenger Messenger
	Events    *events.Recorder
	Emit      economy.EmitFunc
}

// Dispatcher runs the pipeline: parse, resolve, permission check, cooldown
// check, execute, cooldown commit, usage tracking. Every failure comes back
// as a structured Result; nothing is thrown past this boundary.
type Dispatcher struct {
	registry *Registry
	gate     *CooldownGate
	usage    *UsageTracker
	flood    *FloodGate
	env      Env
	cfg      *config.Config
	log      zerolog.Logger

	observeDuration func(command string, d time.Duration)
}

// NewDispatcher wires the pipeline. flood may be nil to disable flood
// protection (tests, console).
func NewDispatcher(registry *Registry, gate *CooldownGate, usage *UsageTracker, flood *FloodGate, env Env, cfg *config.Config, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		gate:     gate,
		usage:    usage,
		flood:    flood,
		env:      env,
		cfg:      cfg,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
}

// SetDurationObserver installs a hook receiving per-command execution time.
func (d *Dispatcher) SetDurationObserver(fn func(command string, d time.Duration)) {
	d.observeDuration = fn
}

// Registry exposes the dispatcher's registry (help command, hot reload).
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Usage exposes the dispatcher's usage tracker.
func (d *Dispatcher) Usage() *UsageTracker { return d.usage }

// Dispatch processes one inbound line from user. A nil result means the
// line was not a command at all and deserves no reply.
func (d *Dispatcher) Dispatch(user, line string, receivedAt time.Time) *Result {
	inv, err := Parse(line, d.cfg.Prefix)
	if err != nil {
		return &Result{Success: false, Message: fmt.Sprintf("could not parse command: %v", err)}
	}
	if inv == nil {
		return nil
	}

	// Only actual invocations consume flood tokens; chatter stays silent.
	if d.flood != nil && !d.flood.Allow(user) {
		return &Result{Success: false, Message: "you are sending commands too fast, slow down"}
	}

	cmd, ok := d.registry.Resolve(inv.Name)
	if !ok {
		return &Result{Success: false, Message: fmt.Sprintf("unknown command: %s", inv.Name)}
	}

	isAdmin := d.cfg.IsAdmin(user)
	if cmd.AdminOnly() && !isAdmin {
		d.usage.Record(cmd.Name, StatusPermissionDenied)
		return &Result{Success: false, Message: "this command requires admin privileges"}
	}

	if remaining := d.gate.Check(cmd.Name, user); remaining > 0 {
		d.usage.Record(cmd.Name, StatusOnCooldown)
		return &Result{Success: false, Message: fmt.Sprintf("slow down: try %s again in %s", cmd.Name, formatRemaining(remaining))}
	}

	started := time.Now()
	res, internal := d.execute(cmd, user, isAdmin, inv.Args, receivedAt)
	if d.observeDuration != nil {
		d.observeDuration(cmd.Name, time.Since(started))
	}

	switch {
	case res.Success:
		if cd := d.cfg.CooldownFor(cmd.Name, cmd.Cooldown); cd > 0 {
			d.gate.Commit(cmd.Name, user, cd)
		}
		d.usage.Record(cmd.Name, StatusOK)
	case internal:
		d.usage.Record(cmd.Name, StatusInternalError)
	default:
		d.usage.Record(cmd.Name, StatusHandlerError)
	}
	return res
}

// execute invokes the handler, converting errors and panics into failed
// results so the dispatch loop never crashes.
func (d *Dispatcher) execute(cmd *Command, user string, isAdmin bool, args []string, receivedAt time.Time) (res *Result, internal bool) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().Str("command", cmd.Name).Str("user", user).Any("panic", r).Msg("handler panicked")
			res = &Result{Success: false, Message: fmt.Sprintf("internal error: %v", r)}
			internal = true
		}
	}()

	ctx := &Context{
		Economy:    d.env.Economy,
		Games:      d.env.Games,
		Messenger:  d.env.Messenger,
		Events:     d.env.Events,
		Registry:   d.registry,
		Emit:       d.env.Emit,
		Logger:     d.log.With().Str("command", cmd.Name).Logger(),
		Prefix:     d.cfg.Prefix,
		User:       user,
		IsAdmin:    isAdmin,
		Args:       args,
		ReceivedAt: receivedAt,
	}

	out, err := cmd.Handler(ctx)
	if err != nil {
		// Persistence failures are surfaced at error severity so the
		// operator layer can decide to halt or retry.
		if isPersistenceError(err) {
			d.log.Error().Err(err).Str("command", cmd.Name).Str("user", user).Msg("persistence failure during command")
		} else {
			d.log.Debug().Err(err).Str("command", cmd.Name).Str("user", user).Msg("command failed")
		}
		return &Result{Success: false, Message: err.Error()}, false
	}
	if out == nil {
		return &Result{Success: true}, false
	}
	return out, false
}

func isPersistenceError(err error) bool {
	return errors.Is(err, economy.ErrPersistence)
}

// formatRemaining renders a cooldown: plain seconds under a minute,
// ceiling-rounded minutes above.
func formatRemaining(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	if secs < 60 {
		if secs == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", secs)
	}
	mins := (secs + 59) / 60
	if mins == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", mins)
}
