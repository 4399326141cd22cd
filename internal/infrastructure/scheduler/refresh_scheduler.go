package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Refresher drops cached tables and loads them again
type Refresher interface {
	Reload(ctx context.Context, name string) error
	Warm(ctx context.Context) error
}

// Config holds refresh scheduler configuration
type Config struct {
	Interval time.Duration // 0 disables the scheduler
	Timeout  time.Duration // upper bound of one refresh run
}

// DefaultConfig returns a disabled scheduler configuration
func DefaultConfig() Config {
	return Config{Timeout: 2 * time.Minute}
}

func (c Config) validate() error {
	if c.Interval < 0 || c.Timeout < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	return nil
}

// RefreshScheduler periodically reloads every cached table so edits made to
// the spreadsheets show up without a restart or a manual reload call
type RefreshScheduler struct {
	config Config
	target Refresher
	logger *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	runs      int
	lastErr   error
	lastRunAt time.Time
}

// NewRefreshScheduler creates a new refresh scheduler
func NewRefreshScheduler(config Config, target Refresher, logger *zap.Logger) (*RefreshScheduler, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefreshScheduler{
		config: config,
		target: target,
		logger: logger,
	}, nil
}

// Start runs the refresh loop until ctx is cancelled or Stop is called
func (s *RefreshScheduler) Start(ctx context.Context) error {
	if s.config.Interval == 0 {
		return ErrSchedulerDisabled
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Refresh scheduler started", zap.Duration("interval", s.config.Interval))
	return nil
}

// Stop gracefully stops the scheduler, waiting for a running refresh
func (s *RefreshScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Refresh scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Refresh scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *RefreshScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// Status describes the most recent refresh run
type Status struct {
	Running   bool
	Runs      int
	LastRunAt time.Time
	LastError error
}

// Status returns a snapshot of the scheduler state
func (s *RefreshScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:   s.isRunning,
		Runs:      s.runs,
		LastRunAt: s.lastRunAt,
		LastError: s.lastErr,
	}
}

func (s *RefreshScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}

// RunOnce clears the table cache and loads every table again.
// Tables that fail to load are served from the source on next request.
func (s *RefreshScheduler) RunOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	err := s.target.Reload(ctx, "")
	if err == nil {
		err = s.target.Warm(ctx)
	}

	s.mu.Lock()
	s.runs++
	s.lastRunAt = start
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("Table refresh failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return err
	}
	s.logger.Info("Tables refreshed", zap.Duration("duration", time.Since(start)))
	return nil
}
