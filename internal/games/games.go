// Package games holds the chance-based payout logic behind the gambling
// commands. All randomness flows through an injected source so outcomes
// are reproducible in tests.
package games

import (
	"math/rand"
	"sync"
)

// Work reward bounds, inclusive lower and exclusive upper.
const (
	workMin = 65
	workMax = 650
)

var slotSymbols = []string{"🍒", "🍋", "🔔", "💎", "7️⃣"}

// FlipOutcome is the result of a coin flip wager.
type FlipOutcome struct {
	Won   bool
	Delta int64 // signed change to apply to the wallet
}

// SlotsOutcome is the result of one slot machine spin.
type SlotsOutcome struct {
	Reels  [3]string
	Payout int64 // total returned to the player, 0 on a loss
	Delta  int64 // Payout - wager
}

// Dealer produces game outcomes. Safe for concurrent use.
type Dealer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDealer seeds a dealer. Pass a fixed seed in tests for deterministic
// outcomes.
func NewDealer(seed int64) *Dealer {
	return &Dealer{rng: rand.New(rand.NewSource(seed))}
}

// Flip wagers amount on a fair coin. A win doubles the wager back, a loss
// forfeits it.
func (d *Dealer) Flip(amount int64) FlipOutcome {
	d.mu.Lock()
	win := d.rng.Intn(2) == 0
	d.mu.Unlock()
	if win {
		return FlipOutcome{Won: true, Delta: amount}
	}
	return FlipOutcome{Won: false, Delta: -amount}
}

// Work returns a uniform reward in [65, 650).
func (d *Dealer) Work() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.rng.Intn(workMax-workMin) + workMin)
}

// Slots spins three reels against the wager. Three matching symbols pay
// 10x, a pair pays 2x, anything else loses the wager.
func (d *Dealer) Slots(wager int64) SlotsOutcome {
	d.mu.Lock()
	var reels [3]string
	for i := range reels {
		reels[i] = slotSymbols[d.rng.Intn(len(slotSymbols))]
	}
	d.mu.Unlock()

	var payout int64
	switch {
	case reels[0] == reels[1] && reels[1] == reels[2]:
		payout = wager * 10
	case reels[0] == reels[1] || reels[1] == reels[2] || reels[0] == reels[2]:
		payout = wager * 2
	}
	return SlotsOutcome{Reels: reels, Payout: payout, Delta: payout - wager}
}
