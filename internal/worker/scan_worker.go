package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/service"
)

// ScanWorker triggers the breach scan on a fixed internal cadence as an
// alternative to an external scheduler hitting the HTTP trigger.
type ScanWorker struct {
	scans    *service.BreachScanService
	interval time.Duration
	logger   *zap.Logger
}

// NewScanWorker constructs the worker.
func NewScanWorker(scans *service.BreachScanService, interval time.Duration, logger *zap.Logger) *ScanWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanWorker{scans: scans, interval: interval, logger: logger}
}

// Run blocks, invoking the scan each interval until the context is canceled.
func (w *ScanWorker) Run(ctx context.Context) {
	if w.scans == nil || w.interval <= 0 {
		w.logger.Warn("scan worker disabled")
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("scan worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("scan worker stopped")
			return
		case <-ticker.C:
			summary, err := w.scans.Run(ctx, time.Now())
			if err != nil {
				w.logger.Error("scheduled breach scan failed", zap.Error(err))
				continue
			}
			w.logger.Info("scheduled breach scan finished",
				zap.Int("scanned", summary.Scanned),
				zap.Int("notified", len(summary.Notified)),
				zap.Int("skipped", summary.Skipped))
		}
	}
}
