// Package jobmgr runs named background jobs with cancellation, status
// callbacks and in-memory tracking. Intentionally minimal: no retries, no
// worker pools, no persistence. Jobs run in their own goroutines and are
// removed automatically when they return.
package jobmgr

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Job is one running unit of work.
type Job struct {
	Name   string
	Cancel context.CancelFunc
}

// StatusReporter receives lifecycle events, e.g. "running:sweeper",
// "error:sweeper:context canceled", "done:sweeper".
type StatusReporter func(string)

// Manager starts, stops and tracks jobs. Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	wg       sync.WaitGroup
	jobs     map[string]*Job
	reporter StatusReporter
}

// NewManager creates a Manager. The reporter may be nil.
func NewManager(reporter StatusReporter) *Manager {
	return &Manager{
		jobs:     make(map[string]*Job),
		reporter: reporter,
	}
}

// Start runs a job in its own goroutine, bound to parent. Starting a name
// that is already running is an error. The job is untracked once the
// runner returns.
func (m *Manager) Start(parent context.Context, name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("job %q is already running", name)
	}

	ctx, cancel := context.WithCancel(parent)
	m.jobs[name] = &Job{Name: name, Cancel: cancel}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		m.report("running:" + name)

		if err := runner(ctx); err != nil && !strings.Contains(err.Error(), context.Canceled.Error()) {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		delete(m.jobs, name)
		m.mu.Unlock()
		cancel()
	}()

	return nil
}

// Stop cancels a running job by name.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job %q not running", name)
	}
	job.Cancel()
	delete(m.jobs, name)
	return nil
}

// List returns the names of active jobs.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	return out
}

// Status returns a human-readable summary of active jobs.
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return fmt.Sprintf("Running jobs: %s", strings.Join(active, ", "))
}

// Wait blocks until every started job has returned. Call after cancelling
// the parent context during shutdown.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) report(s string) {
	if m.reporter != nil {
		m.reporter(s)
	}
}
