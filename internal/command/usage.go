package command

import "sync"

// UsageTracker counts dispatch attempts per command, independent of outcome.
// An optional observe hook mirrors each increment to external metrics.
type UsageTracker struct {
	mu      sync.Mutex
	counts  map[string]uint64
	observe func(command, status string)
}

// NewUsageTracker returns a tracker. observe may be nil.
func NewUsageTracker(observe func(command, status string)) *UsageTracker {
	return &UsageTracker{
		counts:  make(map[string]uint64),
		observe: observe,
	}
}

// Record counts one dispatch attempt for command with the given outcome
// status.
func (u *UsageTracker) Record(command, status string) {
	u.mu.Lock()
	u.counts[command]++
	u.mu.Unlock()
	if u.observe != nil {
		u.observe(command, status)
	}
}

// Count returns how many times command has been dispatched.
func (u *UsageTracker) Count(command string) uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counts[command]
}

// Counts returns a copy of all counters.
func (u *UsageTracker) Counts() map[string]uint64 {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make(map[string]uint64, len(u.counts))
	for k, v := range u.counts {
		out[k] = v
	}
	return out
}
