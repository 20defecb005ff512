package jobmgr

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestStartAndFinish(t *testing.T) {
	var events []string
	m := NewManager(func(s string) { events = append(events, s) })

	done := make(chan struct{})
	err := m.Start(context.Background(), "tick", func(context.Context) error {
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	<-done
	m.Wait()

	if len(m.List()) != 0 {
		t.Fatalf("job still tracked: %v", m.List())
	}
	joined := strings.Join(events, "|")
	if !strings.Contains(joined, "running:tick") || !strings.Contains(joined, "done:tick") {
		t.Fatalf("events: %v", events)
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	m := NewManager(nil)
	block := make(chan struct{})
	_ = m.Start(context.Background(), "job", func(ctx context.Context) error {
		<-block
		return nil
	})
	if err := m.Start(context.Background(), "job", func(context.Context) error { return nil }); err == nil {
		t.Fatal("duplicate start allowed")
	}
	close(block)
	m.Wait()
}

func TestStopCancelsJob(t *testing.T) {
	m := NewManager(nil)
	started := make(chan struct{})
	_ = m.Start(context.Background(), "loop", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	if err := m.Stop("loop"); err != nil {
		t.Fatalf("stop: %v", err)
	}
	m.Wait()

	if err := m.Stop("loop"); err == nil {
		t.Fatal("stopping a finished job should error")
	}
}

func TestParentContextCancelsJobs(t *testing.T) {
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	_ = m.Start(ctx, "loop", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	cancel()
	waitDone := make(chan struct{})
	go func() { m.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("jobs did not stop with the parent context")
	}
}
