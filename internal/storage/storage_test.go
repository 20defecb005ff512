package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "ledger.json"), zerolog.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKeyNormalization(t *testing.T) {
	cases := map[string]string{
		"Alice":    "alice",
		"  BOB  ":  "bob",
		"carol":    "carol",
		"MiXeD Up": "mixed up",
	}
	for in, want := range cases {
		if got := Key(in); got != want {
			t.Fatalf("Key(%q) = %q want %q", in, got, want)
		}
	}
}

func TestPutGetRoundtrip(t *testing.T) {
	s := newTestStorage(t)
	due := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	rec := &EconomyRecord{
		Balance:   750,
		Bank:      250,
		Loan:      100,
		LoanDueAt: &due,
		Transactions: []Transaction{
			{ID: "t1", Type: "deposit", Amount: 250, Datetime: due},
		},
	}
	if err := s.PutUser("Alice", rec); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, exists, err := s.GetUser("ALICE")
	if err != nil || !exists {
		t.Fatalf("get: exists=%v err=%v", exists, err)
	}
	if got.Balance != 750 || got.Bank != 250 || got.Loan != 100 {
		t.Fatalf("got %+v", got)
	}
	if got.Total() != 1000 {
		t.Fatalf("total %d want 1000", got.Total())
	}
	if got.LoanDueAt == nil || !got.LoanDueAt.Equal(due) {
		t.Fatalf("due date %v", got.LoanDueAt)
	}
	if len(got.Transactions) != 1 || got.Transactions[0].Type != "deposit" {
		t.Fatalf("transactions %+v", got.Transactions)
	}
}

func TestAllUsers(t *testing.T) {
	s := newTestStorage(t)
	_ = s.PutUser("alice", &EconomyRecord{Balance: 1})
	_ = s.PutUser("Bob", &EconomyRecord{Balance: 2})

	users, err := s.AllUsers()
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users", len(users))
	}
	if users["bob"] == nil || users["bob"].Balance != 2 {
		t.Fatalf("bob record: %+v", users["bob"])
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := newTestStorage(t)
	_ = s.PutUser("alice", &EconomyRecord{Balance: 100})

	snap := s.Snapshot()
	_ = s.PutUser("alice", &EconomyRecord{Balance: 0})
	_ = s.PutUser("mallory", &EconomyRecord{Balance: 9999})

	s.Restore(snap)

	rec, exists, _ := s.GetUser("alice")
	if !exists || rec.Balance != 100 {
		t.Fatalf("alice after restore: %+v", rec)
	}
	if _, exists, _ := s.GetUser("mallory"); exists {
		t.Fatal("restore kept a user added after the snapshot")
	}
}
