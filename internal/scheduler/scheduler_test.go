package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestAddRejectsBadSpec(t *testing.T) {
	s := New()

	if err := s.Add("not a cron spec", func(ctx context.Context) {}); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
	if err := s.Add("0 9 * * 1-5", func(ctx context.Context) {}); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestStopUnblocksStart(t *testing.T) {
	s := New()

	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not unblock Start")
	}
}
