package report

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunRefreshLoop re-fetches the record set on a fixed interval. Refresh keeps
// the previous snapshot on failure, so an upstream outage only logs.
func RunRefreshLoop(
	ctx context.Context,
	svc Service,
	interval time.Duration,
	logger *zap.Logger,
) {
	if interval <= 0 {
		interval = 60 * time.Second
	}

	log := logger.Named("report.refresh.worker")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("report refresh worker started", zap.Duration("interval", interval))

	// Warm the snapshot before the first tick.
	if err := svc.Refresh(ctx); err != nil {
		log.Warn("initial report refresh failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("report refresh worker stopped")
			return
		case <-ticker.C:
			if err := svc.Refresh(ctx); err != nil {
				log.Warn("report refresh failed, serving stale snapshot", zap.Error(err))
			}
		}
	}
}
