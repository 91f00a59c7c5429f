package schedule

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"VolunteerHub/internal/service"
	"VolunteerHub/pkg/metrics"
)

// AutoCheckoutSweeper drives the periodic auto-checkout sweep. It is
// independent of the HTTP bootstrap; cmd/scheduler runs the loop and the
// admin API can trigger single runs.
type AutoCheckoutSweeper struct {
	signups  *service.SignupService
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger

	runMu       sync.Mutex
	running     bool
	lastRunTime time.Time
}

func NewAutoCheckoutSweeper(signups *service.SignupService, interval, timeout time.Duration, logger *zap.Logger) *AutoCheckoutSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AutoCheckoutSweeper{
		signups:  signups,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Run ticks until the context is cancelled. Each tick gets its own
// timeout; a failed tick logs and waits for the next one.
func (s *AutoCheckoutSweeper) Run(ctx context.Context) {
	s.logger.Info("Auto-checkout sweeper starting",
		zap.Duration("interval", s.interval),
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Auto-checkout sweeper stopping")
			return
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, s.timeout)
			if _, err := s.RunOnce(runCtx); err != nil {
				s.logger.Error("Auto-checkout sweep run failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// RunOnce executes a single sweep. Overlapping invocations are skipped
// rather than queued: a second run would only see the first one's
// leftovers next tick anyway.
func (s *AutoCheckoutSweeper) RunOnce(ctx context.Context) (service.SweepResult, error) {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		s.logger.Info("Auto-checkout sweep already running, skipping")
		return service.SweepResult{}, nil
	}
	s.running = true
	s.runMu.Unlock()

	defer func() {
		s.runMu.Lock()
		s.running = false
		s.runMu.Unlock()
	}()

	startTime := time.Now()
	s.lastRunTime = startTime

	result, err := s.signups.AutoCheckOut(ctx)

	duration := time.Since(startTime)
	metrics.RecordSweepDuration(ctx, duration.Seconds())

	if err != nil {
		return result, err
	}

	if result.Scanned > 0 {
		s.logger.Info("Auto-checkout sweep completed",
			zap.Int("scanned", result.Scanned),
			zap.Int("closed", result.Closed),
			zap.Int("failed", result.Failed),
			zap.Duration("duration", duration),
		)
	}

	return result, nil
}
