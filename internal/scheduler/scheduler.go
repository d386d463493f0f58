// Package scheduler runs the daemon's cron loop, firing the standup reminder
// on the configured schedule.
package scheduler

import (
	"context"
	"log/slog"
	"sync"

	serrors "github.com/standup-agent/standup/internal/errors"

	"github.com/robfig/cron/v3"
)

// Job is one reminder invocation. The context is cancelled on shutdown.
type Job func(ctx context.Context)

type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

func New() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Add registers a job under a standard five-field cron spec.
func (s *Scheduler) Add(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		if ctx == nil || ctx.Err() != nil {
			return
		}
		job(ctx)
	})
	if err != nil {
		return serrors.InvalidInput("invalid cron schedule " + spec)
	}
	return nil
}

// Start begins firing jobs and blocks until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return serrors.InvalidInput("scheduler already running")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running = true
	s.mu.Unlock()

	slog.Info("Scheduler started")
	s.cron.Start()

	<-s.ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	slog.Info("Scheduler stopped")
	return nil
}

// Stop cancels the run loop and waits for in-flight jobs via Start's return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
