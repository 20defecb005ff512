package command

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// CooldownGate throttles command use per (command, user). Absence of an
// entry means "not on cooldown"; expired entries are dropped lazily on
// Check and in bulk by Sweep.
type CooldownGate struct {
	mu      sync.Mutex
	entries map[string]time.Time // "command:user" -> expiry
	now     func() time.Time
}

// NewCooldownGate returns an empty gate.
func NewCooldownGate() *CooldownGate {
	return &CooldownGate{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// SetClock replaces the gate's clock. Tests only.
func (g *CooldownGate) SetClock(now func() time.Time) { g.now = now }

func cooldownKey(command, user string) string {
	return strings.ToLower(command) + ":" + strings.ToLower(user)
}

// Check reports the remaining cooldown for (command, user). Zero remaining
// means the call is allowed.
func (g *CooldownGate) Check(command, user string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := cooldownKey(command, user)
	expiry, exists := g.entries[key]
	if !exists {
		return 0
	}
	remaining := expiry.Sub(g.now())
	if remaining <= 0 {
		delete(g.entries, key)
		return 0
	}
	return remaining
}

// Commit records a cooldown of d for (command, user). Only called after a
// successful execution; a failed command does not consume cooldown.
func (g *CooldownGate) Commit(command, user string, d time.Duration) {
	if d <= 0 {
		return
	}
	g.mu.Lock()
	g.entries[cooldownKey(command, user)] = g.now().Add(d)
	g.mu.Unlock()
}

// Sweep removes every expired entry and returns how many were dropped.
func (g *CooldownGate) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	dropped := 0
	for key, expiry := range g.entries {
		if !expiry.After(now) {
			delete(g.entries, key)
			dropped++
		}
	}
	return dropped
}

// RunSweeper clears expired entries every interval until ctx is done.
func (g *CooldownGate) RunSweeper(ctx context.Context, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := g.Sweep(); n > 0 {
				log.Debug().Int("dropped", n).Msg("swept expired cooldowns")
			}
		}
	}
}
