package events

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestRecorder(t *testing.T, limit int) *Recorder {
	t.Helper()
	r, err := New(filepath.Join(t.TempDir(), "events.json"), limit, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("failed to open recorder: %v", err)
	}
	return r
}

// waitLen polls until the async consumer has absorbed n records.
func waitLen(t *testing.T, r *Recorder, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for r.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("recorder stuck at %d records, want %d", r.Len(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEmitPreservesOrder(t *testing.T) {
	r := newTestRecorder(t, 100)
	defer r.Close()

	for i := 0; i < 10; i++ {
		r.Emit("daily", "alice", fmt.Sprintf("step %d", i), int64(i))
	}
	waitLen(t, r, 10)

	records, total := r.List(Filter{})
	if total != 10 {
		t.Fatalf("total %d want 10", total)
	}
	// Newest first: the last emitted record leads.
	if records[0].Description != "step 9" || records[9].Description != "step 0" {
		t.Fatalf("order broken: first=%q last=%q", records[0].Description, records[9].Description)
	}
}

func TestListFilters(t *testing.T) {
	r := newTestRecorder(t, 100)
	defer r.Close()

	r.Emit("daily", "alice", "", 500)
	r.Emit("transfer", "alice", "", 100)
	r.Emit("daily", "bob", "", 500)
	waitLen(t, r, 3)

	records, total := r.List(Filter{Kind: "DAILY"})
	if total != 2 || len(records) != 2 {
		t.Fatalf("kind filter: total=%d len=%d", total, len(records))
	}

	records, total = r.List(Filter{User: "Alice"})
	if total != 2 {
		t.Fatalf("user filter: total=%d", total)
	}
	for _, rec := range records {
		if rec.User != "alice" {
			t.Fatalf("wrong user matched: %+v", rec)
		}
	}

	_, total = r.List(Filter{Kind: "daily", User: "bob"})
	if total != 1 {
		t.Fatalf("combined filter: total=%d", total)
	}
}

func TestListPaging(t *testing.T) {
	r := newTestRecorder(t, 100)
	defer r.Close()

	for i := 0; i < 7; i++ {
		r.Emit("work", "alice", fmt.Sprintf("shift %d", i), 1)
	}
	waitLen(t, r, 7)

	records, total := r.List(Filter{Limit: 3})
	if total != 7 || len(records) != 3 {
		t.Fatalf("page 1: total=%d len=%d", total, len(records))
	}
	records, _ = r.List(Filter{Offset: 3, Limit: 3})
	if len(records) != 3 || records[0].Description != "shift 3" {
		t.Fatalf("page 2: len=%d first=%q", len(records), records[0].Description)
	}
	records, _ = r.List(Filter{Offset: 100})
	if records != nil {
		t.Fatalf("out-of-range offset: %v", records)
	}
}

func TestBoundedEviction(t *testing.T) {
	r := newTestRecorder(t, 5)
	defer r.Close()

	for i := 0; i < 8; i++ {
		r.Emit("tick", "alice", fmt.Sprintf("n%d", i), 0)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		records, total := r.List(Filter{})
		if total == 5 && records[0].Description == "n7" {
			if records[4].Description != "n3" {
				t.Fatalf("kept wrong window: last=%q", records[4].Description)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("eviction never settled: total=%d records=%v", total, records)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	r, err := New(path, 50, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r.Emit("daily", "alice", "reward", 500)
	waitLen(t, r, 1)
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(path, 50, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.Len() != 1 {
		t.Fatalf("reloaded %d records, want 1", reopened.Len())
	}
}
