package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/reservation-service/internal/service"
)

// HoldApplier runs one hold sweep.
type HoldApplier interface {
	Apply(ctx context.Context) (*service.HoldReport, error)
}

// HoldWorker applies table holds on a fixed interval until its context ends.
type HoldWorker struct {
	holds    HoldApplier
	interval time.Duration
	timeout  time.Duration
	logger   *zap.Logger
}

// NewHoldWorker constructs the worker. Each sweep is bounded by the interval.
func NewHoldWorker(holds HoldApplier, interval time.Duration, logger *zap.Logger) *HoldWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HoldWorker{holds: holds, interval: interval, timeout: interval, logger: logger}
}

// Run sweeps immediately and then on every tick. It returns when ctx is done.
func (w *HoldWorker) Run(ctx context.Context) {
	w.logger.Info("hold worker started", zap.Duration("interval", w.interval))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.sweep(ctx)
		select {
		case <-ctx.Done():
			w.logger.Info("hold worker stopped")
			return
		case <-ticker.C:
		}
	}
}

func (w *HoldWorker) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if _, err := w.holds.Apply(sweepCtx); err != nil {
		w.logger.Warn("hold sweep failed", zap.Error(err))
	}
}
