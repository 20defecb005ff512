// Package economy implements the ledger operations: balance adjustments,
// wallet/bank transfers, loans, daily rewards, peer transfers and the
// leaderboard. Every mutating call is a critical section over the whole
// table (load, mutate, save) and persists synchronously before returning;
// on a save failure the in-memory state is rolled back and ErrPersistence
// is returned.
package economy

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"pursebot/internal/config"
	"pursebot/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EmitFunc receives a fire-and-forget event record for the activity log.
type EmitFunc func(kind, user, description string, amount int64)

// Engine runs all economy operations against the ledger store.
type Engine struct {
	mu    sync.Mutex
	store *storage.Storage
	cfg   config.Economy
	log   zerolog.Logger
	emit  EmitFunc
	now   func() time.Time
}

// New creates an Engine. emit may be nil.
func New(store *storage.Storage, cfg config.Economy, log zerolog.Logger, emit EmitFunc) *Engine {
	return &Engine{
		store: store,
		cfg:   cfg,
		log:   log.With().Str("component", "economy").Logger(),
		emit:  emit,
		now:   time.Now,
	}
}

// SetClock replaces the engine's clock. Tests only.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// DailyResult is the outcome of a successful daily collection.
type DailyResult struct {
	Amount int64
	Streak int
}

// LeaderboardEntry is one row of the top-users query.
type LeaderboardEntry struct {
	Username string
	Total    int64
}

// GetOrCreate returns the record for user, creating it with the configured
// starting balance on first access. Creation is persisted immediately.
func (e *Engine) GetOrCreate(user string) (*storage.EconomyRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	rec, exists, err := e.store.GetUser(user)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if exists {
		return rec, nil
	}

	rec = &storage.EconomyRecord{Balance: e.cfg.StartingBalance}
	err = e.commit(func() error {
		return e.store.PutUser(user, rec)
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug().Str("user", storage.Key(user)).Int64("balance", rec.Balance).Msg("created ledger record")
	return rec, nil
}

// AdjustBalance adds delta to the user's wallet, clamping the result at zero.
// Unlike transfers this never fails on insufficient funds; it is the
// reward/penalty primitive.
func (e *Engine) AdjustBalance(user string, delta int64, description string) (int64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var balance int64
	err := e.commit(func() error {
		rec, err := e.loadOrSeed(user)
		if err != nil {
			return err
		}
		rec.Balance += delta
		if rec.Balance < 0 {
			rec.Balance = 0
		}
		balance = rec.Balance
		e.appendTransaction(rec, "adjust", abs(delta), description)
		return e.store.PutUser(user, rec)
	})
	if err != nil {
		return 0, err
	}
	e.emitEvent("adjust", user, description, delta)
	return balance, nil
}

// Deposit moves amount from wallet to bank.
func (e *Engine) Deposit(user string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number", ErrInvalidAmount)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.commit(func() error {
		rec, err := e.loadOrSeed(user)
		if err != nil {
			return err
		}
		if rec.Balance < amount {
			return fmt.Errorf("%w: your balance: %d coins", ErrInsufficientWalletFunds, rec.Balance)
		}
		rec.Balance -= amount
		rec.Bank += amount
		e.appendTransaction(rec, "deposit", amount, "wallet to bank")
		return e.store.PutUser(user, rec)
	})
	if err != nil {
		return err
	}
	e.emitEvent("deposit", user, "wallet to bank", amount)
	return nil
}

// Withdraw moves amount from bank to wallet.
func (e *Engine) Withdraw(user string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number", ErrInvalidAmount)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.commit(func() error {
		rec, err := e.loadOrSeed(user)
		if err != nil {
			return err
		}
		if rec.Bank < amount {
			return fmt.Errorf("%w: your bank: %d coins", ErrInsufficientBankFunds, rec.Bank)
		}
		rec.Bank -= amount
		rec.Balance += amount
		e.appendTransaction(rec, "withdraw", amount, "bank to wallet")
		return e.store.PutUser(user, rec)
	})
	if err != nil {
		return err
	}
	e.emitEvent("withdraw", user, "bank to wallet", amount)
	return nil
}

// TakeLoan issues a loan: credits the wallet and records the due date.
// A user may hold at most one outstanding loan.
func (e *Engine) TakeLoan(user string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number", ErrInvalidAmount)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.commit(func() error {
		rec, err := e.loadOrSeed(user)
		if err != nil {
			return err
		}
		if rec.Loan > 0 {
			return fmt.Errorf("%w: outstanding: %d coins", ErrAlreadyHasLoan, rec.Loan)
		}
		if amount > e.cfg.MaxLoan {
			return fmt.Errorf("%w: maximum is %d coins", ErrExceedsMaxLoan, e.cfg.MaxLoan)
		}
		due := e.now().Add(e.cfg.LoanDuration())
		rec.Loan = amount
		rec.LoanDueAt = &due
		rec.Balance += amount
		e.appendTransaction(rec, "loan", amount, "loan issued")
		return e.store.PutUser(user, rec)
	})
	if err != nil {
		return err
	}
	e.emitEvent("loan", user, "loan issued", amount)
	return nil
}

// RepayLoan pays amount (capped to the outstanding principal) from the
// wallet. The due date is cleared when the loan reaches zero.
func (e *Engine) RepayLoan(user string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be a positive number", ErrInvalidAmount)
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	var paid int64
	err := e.commit(func() error {
		rec, err := e.loadOrSeed(user)
		if err != nil {
			return err
		}
		if rec.Loan == 0 {
			return ErrNoActiveLoan
		}
		paid = amount
		if paid > rec.Loan {
			paid = rec.Loan
		}
		if rec.Balance < paid {
			return fmt.Errorf("%w: your balance: %d coins", ErrInsufficientWalletFunds, rec.Balance)
		}
		rec.Balance -= paid
		rec.Loan -= paid
		if rec.Loan == 0 {
			rec.LoanDueAt = nil
		}
		e.appendTransaction(rec, "repay", paid, "loan repayment")
		return e.store.PutUser(user, rec)
	})
	if err != nil {
		return 0, err
	}
	e.emitEvent("repay", user, "loan repayment", paid)
	return paid, nil
}

// Transfer moves amount from one user's wallet to another's. Both sides get
// a transaction record stamped with the same instant and group ID.
func (e *Engine) Transfer(fromUser, toUser string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be a positive number", ErrInvalidAmount)
	}
	if storage.Key(fromUser) == storage.Key(toUser) {
		return ErrSelfTransfer
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.commit(func() error {
		from, err := e.loadOrSeed(fromUser)
		if err != nil {
			return err
		}
		if from.Balance < amount {
			return fmt.Errorf("%w: your balance: %d coins", ErrInsufficientWalletFunds, from.Balance)
		}
		to, err := e.loadOrSeed(toUser)
		if err != nil {
			return err
		}

		when := e.now()
		groupID := uuid.NewString()
		from.Balance -= amount
		to.Balance += amount
		e.appendTransactionAt(from, groupID, "transfer_out", amount, "sent to "+storage.Key(toUser), when)
		e.appendTransactionAt(to, groupID, "transfer_in", amount, "received from "+storage.Key(fromUser), when)

		if err := e.store.PutUser(fromUser, from); err != nil {
			return err
		}
		return e.store.PutUser(toUser, to)
	})
	if err != nil {
		return err
	}
	e.emitEvent("transfer", fromUser, "sent to "+storage.Key(toUser), amount)
	return nil
}

// CollectDaily grants the daily reward. The streak grows by one per
// collection and resets to 1 when the gap since the last collection exceeds
// twice the interval.
func (e *Engine) CollectDaily(user string) (*DailyResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out DailyResult
	err := e.commit(func() error {
		rec, err := e.loadOrSeed(user)
		if err != nil {
			return err
		}
		now := e.now()
		interval := e.cfg.DailyInterval()
		if rec.LastDailyAt != nil {
			elapsed := now.Sub(*rec.LastDailyAt)
			if elapsed < interval {
				return &DailyCooldownError{Remaining: interval - elapsed}
			}
			if elapsed > 2*interval {
				rec.DailyStreak = 0
			}
		}
		rec.DailyStreak++
		rec.Balance += e.cfg.DailyReward
		rec.LastDailyAt = &now
		out = DailyResult{Amount: e.cfg.DailyReward, Streak: rec.DailyStreak}
		e.appendTransaction(rec, "daily", e.cfg.DailyReward, fmt.Sprintf("daily reward (streak %d)", rec.DailyStreak))
		return e.store.PutUser(user, rec)
	})
	if err != nil {
		return nil, err
	}
	e.emitEvent("daily", user, fmt.Sprintf("streak %d", out.Streak), out.Amount)
	return &out, nil
}

// TopUsers returns up to limit users ordered by wallet+bank descending.
// Tie order is unspecified.
func (e *Engine) TopUsers(limit int) ([]LeaderboardEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	table, err := e.store.AllUsers()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	entries := make([]LeaderboardEntry, 0, len(table))
	for name, rec := range table {
		entries = append(entries, LeaderboardEntry{Username: name, Total: rec.Total()})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// History returns the most recent transactions for user, newest first.
func (e *Engine) History(user string, limit int) ([]storage.Transaction, error) {
	rec, err := e.GetOrCreate(user)
	if err != nil {
		return nil, err
	}
	txs := rec.Transactions
	out := make([]storage.Transaction, 0, len(txs))
	for i := len(txs) - 1; i >= 0; i-- {
		out = append(out, txs[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// commit runs a mutation against the in-memory table and persists it.
// Any failure, including the save itself, rolls the table back so no
// partial state survives. Callers must hold e.mu.
func (e *Engine) commit(fn func() error) error {
	snap := e.store.Snapshot()
	if err := fn(); err != nil {
		e.store.Restore(snap)
		return err
	}
	if err := e.store.Save(); err != nil {
		e.store.Restore(snap)
		e.log.Error().Err(err).Msg("ledger save failed, rolled back")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// loadOrSeed fetches a record or seeds a fresh one in memory. Persistence is
// the caller's concern (commit).
func (e *Engine) loadOrSeed(user string) (*storage.EconomyRecord, error) {
	rec, exists, err := e.store.GetUser(user)
	if err != nil {
		return nil, err
	}
	if !exists {
		rec = &storage.EconomyRecord{Balance: e.cfg.StartingBalance}
	}
	return rec, nil
}

func (e *Engine) appendTransaction(rec *storage.EconomyRecord, txType string, amount int64, description string) {
	e.appendTransactionAt(rec, uuid.NewString(), txType, amount, description, e.now())
}

func (e *Engine) appendTransactionAt(rec *storage.EconomyRecord, id, txType string, amount int64, description string, when time.Time) {
	rec.Transactions = append(rec.Transactions, storage.Transaction{
		ID:          id,
		Type:        txType,
		Amount:      amount,
		Description: description,
		Datetime:    when,
	})
	if limit := e.cfg.TransactionsLimit; limit > 0 && len(rec.Transactions) > limit {
		rec.Transactions = rec.Transactions[len(rec.Transactions)-limit:]
	}
}

func (e *Engine) emitEvent(kind, user, description string, amount int64) {
	if e.emit != nil {
		e.emit(kind, storage.Key(user), description, amount)
	}
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
