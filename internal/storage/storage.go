// Package storage is the ledger store: a typed wrapper over the file-backed
// datastore mapping usernames to economy records. Keys are lower-cased on
// every access. Save is the write-through primitive; the engine calls it
// after every mutation and rolls back via Snapshot/Restore when it fails.
package storage

import (
	"encoding/json"
	"strings"
	"time"

	"pursebot/datastore"

	"github.com/rs/zerolog"
)

// Transaction is one entry in a user's bounded history.
type Transaction struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Datetime    time.Time `json:"datetime"`
}

// EconomyRecord is the per-user ledger row.
type EconomyRecord struct {
	Balance      int64         `json:"balance"`
	Bank         int64         `json:"bank"`
	Loan         int64         `json:"loan"`
	LoanDueAt    *time.Time    `json:"loan_due_at,omitempty"`
	LastDailyAt  *time.Time    `json:"last_daily_at,omitempty"`
	DailyStreak  int           `json:"daily_streak"`
	Transactions []Transaction `json:"transactions"`
}

// Total returns wallet plus bank funds.
func (r *EconomyRecord) Total() int64 {
	return r.Balance + r.Bank
}

// Storage owns the ledger table.
type Storage struct {
	ds  *datastore.DataStore
	log zerolog.Logger
}

// New opens (or creates) the ledger file at filePath.
func New(filePath string, log zerolog.Logger) (*Storage, error) {
	cfg := datastore.DefaultConfig(filePath)
	cfg.Logger = log
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds, log: log}, nil
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

// Key normalizes a username into a ledger key.
func Key(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// GetUser returns the record for username, or (nil, false) when absent.
func (s *Storage) GetUser(username string) (*EconomyRecord, bool, error) {
	var rec EconomyRecord
	exists, err := s.ds.Get(Key(username), &rec)
	if err != nil {
		return nil, exists, err
	}
	if !exists {
		return nil, false, nil
	}
	return &rec, true, nil
}

// PutUser stores the record for username in memory. Call Save to persist.
func (s *Storage) PutUser(username string, rec *EconomyRecord) error {
	return s.ds.Put(Key(username), rec)
}

// AllUsers returns the full ledger table keyed by normalized username.
func (s *Storage) AllUsers() (map[string]*EconomyRecord, error) {
	out := make(map[string]*EconomyRecord)
	for _, key := range s.ds.Keys() {
		var rec EconomyRecord
		exists, err := s.ds.Get(key, &rec)
		if err != nil {
			return nil, err
		}
		if exists {
			out[key] = &rec
		}
	}
	return out, nil
}

// Save persists the whole table synchronously.
func (s *Storage) Save() error {
	return s.ds.Save()
}

// Snapshot captures the table for rollback.
func (s *Storage) Snapshot() map[string]json.RawMessage {
	return s.ds.Snapshot()
}

// Restore rolls the in-memory table back to a snapshot.
func (s *Storage) Restore(snap map[string]json.RawMessage) {
	s.ds.Restore(snap)
}
