package engine

import (
	"context"
	"time"
)

// Run executes cycles until ctx is cancelled, sleeping the configured
// interval after each one. Cycle failures are logged and never stop the loop.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("sync started", "interval", e.interval)
	for {
		report, err := e.RunCycle(ctx)
		switch {
		case ctx.Err() != nil:
			e.logger.Info("sync stopped")
			return nil
		case err != nil:
			e.logger.Error("sync cycle failed", "error", err)
		case report.Selected > 0:
			e.logger.Info("sync cycle finished", "cycle", report.ID, "answered", report.Answered, "degraded", report.Soft, "failed", report.Failed)
		default:
			e.logger.Debug("nothing to answer", "cycle", report.ID, "rows", report.Rows)
		}

		timer := time.NewTimer(e.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			e.logger.Info("sync stopped")
			return nil
		case <-timer.C:
		}
	}
}
