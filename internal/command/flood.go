package command

import (
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// FloodGate is a per-user token bucket guarding the dispatch entry point,
// independent of per-command cooldowns. It keeps one limiter per user and
// never blocks: over-limit calls are simply rejected.
type FloodGate struct {
	mu    sync.Mutex
	users map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// NewFloodGate allows perMinute commands per user with the given burst.
func NewFloodGate(perMinute int, burst int) *FloodGate {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &FloodGate{
		users: make(map[string]*rate.Limiter),
		limit: rate.Limit(float64(perMinute) / 60.0),
		burst: burst,
	}
}

// Allow reports whether user may dispatch another command right now.
func (f *FloodGate) Allow(user string) bool {
	user = strings.ToLower(user)

	f.mu.Lock()
	lim, exists := f.users[user]
	if !exists {
		lim = rate.NewLimiter(f.limit, f.burst)
		f.users[user] = lim
	}
	f.mu.Unlock()

	return lim.Allow()
}
