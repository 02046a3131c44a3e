package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionSweeper is the contract for the expired-session sweep
type SessionSweeper interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// SessionCleanupScheduler periodically removes expired checkout sessions.
// Expiry is already enforced lazily on every read, so the sweep is purely
// housekeeping; a missed run never affects correctness.
type SessionCleanupScheduler struct {
	sweeper  SessionSweeper
	interval time.Duration
	logger   *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewSessionCleanupScheduler creates a new SessionCleanupScheduler
func NewSessionCleanupScheduler(sweeper SessionSweeper, interval time.Duration, logger *zap.Logger) *SessionCleanupScheduler {
	return &SessionCleanupScheduler{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start starts the background sweep loop
func (s *SessionCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Session cleanup scheduler started",
		zap.Duration("interval", s.interval),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *SessionCleanupScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Session cleanup scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Session cleanup scheduler stop timed out")
		return ctx.Err()
	}
}

// loop runs the sweep on a fixed ticker until the context is cancelled
func (s *SessionCleanupScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one cleanup pass
func (s *SessionCleanupScheduler) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	removed, err := s.sweeper.CleanupExpired(sweepCtx)
	if err != nil {
		s.logger.Error("Expired session sweep failed", zap.Error(err))
		return
	}
	if removed > 0 {
		s.logger.Info("Removed expired checkout sessions",
			zap.Int64("count", removed),
		)
	}
}
