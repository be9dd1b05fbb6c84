package core

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig controls how long activity history is kept.
type RetentionConfig struct {
	Retention     time.Duration // entries older than this are purged
	CheckInterval time.Duration // how often to purge
}

// StartRetentionScheduler purges expired history entries immediately and
// then every CheckInterval until ctx is cancelled. Failures are logged and
// retried on the next tick.
func (s *Service) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	if cfg.Retention <= 0 || cfg.CheckInterval <= 0 {
		slog.Warn("retention scheduler disabled", "retention", cfg.Retention, "interval", cfg.CheckInterval)
		return
	}

	slog.Info("retention scheduler started",
		"retention", cfg.Retention.String(),
		"interval", cfg.CheckInterval.String(),
	)

	s.purgeHistory(ctx, cfg.Retention)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			s.purgeHistory(ctx, cfg.Retention)
		}
	}
}

func (s *Service) purgeHistory(ctx context.Context, retention time.Duration) {
	start := time.Now()
	cutoff := s.now().Add(-retention)

	purged, err := s.history.Purge(ctx, cutoff)
	if err != nil {
		slog.Error("history purge failed", "error", err)
		return
	}

	slog.Info("purged activity history",
		"entries_purged", purged,
		"cutoff", cutoff.UTC().Format(time.RFC3339),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
