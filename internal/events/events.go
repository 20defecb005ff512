// Package events is the activity recorder: a bounded, ordered log of
// structured records fed by a fire-and-forget emit hook. Emission never
// blocks command dispatch; a single consumer goroutine appends records, so
// observers see them in emission order. When the intake queue is full the
// record is dropped and counted rather than stalling the caller.
package events

import (
	"strings"
	"sync"
	"time"

	"pursebot/datastore"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const logKey = "log"

// Record is one entry in the activity log.
type Record struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	User        string    `json:"user"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Datetime    time.Time `json:"datetime"`
}

// Filter narrows and pages a List call. Zero values mean "no constraint".
type Filter struct {
	Kind   string
	User   string
	Offset int
	Limit  int
}

// Recorder owns the bounded log.
type Recorder struct {
	mu      sync.RWMutex
	records []Record
	limit   int

	ch     chan Record
	wg     sync.WaitGroup
	ds     *datastore.DataStore
	log    zerolog.Logger
	onDrop func()
}

// New opens the recorder backed by the file at path, keeping at most limit
// records. onDrop (may be nil) is called once per dropped record.
func New(path string, limit int, log zerolog.Logger, onDrop func()) (*Recorder, error) {
	cfg := datastore.DefaultConfig(path)
	cfg.Logger = log
	ds, err := datastore.NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		limit:  limit,
		ch:     make(chan Record, 128),
		ds:     ds,
		log:    log.With().Str("component", "events").Logger(),
		onDrop: onDrop,
	}

	var stored []Record
	if _, err := ds.Get(logKey, &stored); err != nil {
		r.log.Warn().Err(err).Msg("discarding unreadable event log")
	} else {
		r.records = stored
		r.trim()
	}

	r.wg.Add(1)
	go r.consume()
	return r, nil
}

// Emit queues a record. Never blocks; a full queue drops the record.
func (r *Recorder) Emit(kind, user, description string, amount int64) {
	rec := Record{
		ID:          uuid.NewString(),
		Kind:        kind,
		User:        user,
		Description: description,
		Amount:      amount,
		Datetime:    time.Now(),
	}
	select {
	case r.ch <- rec:
	default:
		if r.onDrop != nil {
			r.onDrop()
		}
		r.log.Warn().Str("kind", kind).Msg("event queue full, record dropped")
	}
}

// List returns matching records, newest first, plus the total match count
// before paging.
func (r *Recorder) List(f Filter) ([]Record, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []Record
	for i := len(r.records) - 1; i >= 0; i-- {
		rec := r.records[i]
		if f.Kind != "" && !strings.EqualFold(rec.Kind, f.Kind) {
			continue
		}
		if f.User != "" && !strings.EqualFold(rec.User, f.User) {
			continue
		}
		matched = append(matched, rec)
	}

	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= total {
			return nil, total
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, total
}

// Len returns the current number of stored records.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Close drains the queue and persists the log.
func (r *Recorder) Close() error {
	close(r.ch)
	r.wg.Wait()
	return r.ds.Close()
}

func (r *Recorder) consume() {
	defer r.wg.Done()
	for rec := range r.ch {
		r.mu.Lock()
		r.records = append(r.records, rec)
		r.trim()
		snapshot := make([]Record, len(r.records))
		copy(snapshot, r.records)
		r.mu.Unlock()

		if err := r.ds.Put(logKey, snapshot); err != nil {
			r.log.Error().Err(err).Msg("failed to stage event log")
		}
	}
}

// trim evicts oldest records beyond the cap. Callers hold r.mu.
func (r *Recorder) trim() {
	if r.limit > 0 && len(r.records) > r.limit {
		r.records = r.records[len(r.records)-r.limit:]
	}
}
