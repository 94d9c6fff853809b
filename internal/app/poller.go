package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/fredview/internal/logging"
)

const (
	defaultPollInterval = 30 * time.Minute

	// maxBackoff caps the wait between refreshes after repeated failures.
	maxBackoff = 4 * time.Hour
)

// StartPoller launches a background goroutine that refreshes on a fixed
// cadence, backing off exponentially while refreshes fail. It returns
// immediately; the caller is expected to have done the first refresh.
func StartPoller(ctx context.Context, r *Refresher, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	logger = logging.OrDiscard(logger).With("component", "poller")
	go func() {
		failures := 0
		for {
			wait := calculateBackoff(failures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}

			if err := r.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				failures++
				logger.Warn("scheduled refresh failed",
					"error", err,
					"failures", failures,
					"next_in", calculateBackoff(failures, interval),
				)
				continue
			}
			failures = 0
		}
	}()
}

// calculateBackoff doubles base for every consecutive failure, up to
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
