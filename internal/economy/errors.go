package economy

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for every way a money operation can fail. Handlers match
// with errors.Is; the wrapped messages carry the user-facing detail
// (including the relevant current balance).
var (
	ErrInvalidAmount           = errors.New("invalid amount")
	ErrInsufficientWalletFunds = errors.New("insufficient wallet funds")
	ErrInsufficientBankFunds   = errors.New("insufficient bank funds")
	ErrAlreadyHasLoan          = errors.New("you already have an outstanding loan")
	ErrExceedsMaxLoan          = errors.New("loan amount exceeds the maximum")
	ErrNoActiveLoan            = errors.New("no active loan")
	ErrSelfTransfer            = errors.New("cannot transfer to yourself")
	ErrPersistence             = errors.New("failed to persist ledger")
)

// DailyCooldownError is returned by CollectDaily when the reward was already
// collected within the configured interval.
type DailyCooldownError struct {
	Remaining time.Duration
}

func (e *DailyCooldownError) Error() string {
	return fmt.Sprintf("daily reward on cooldown, %s remaining", e.Remaining.Round(time.Second))
}
