package store

import (
	"context"
	"log/slog"
	"time"
)

// StartExpiryWorker launches a background sweep that deletes sessions idle
// past ttl, bounding the session set for long-running deployments. A zero ttl
// disables the sweep.
func StartExpiryWorker(ctx context.Context, s SessionStore, ttl time.Duration) {
	if ttl <= 0 {
		slog.Info("Session expiry disabled")
		return
	}

	interval := ttl / 4
	if interval > 10*time.Minute {
		interval = 10 * time.Minute
	}
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := s.DeleteIdle(ctx, ttl)
				if err != nil {
					slog.Error("Session expiry sweep failed", "error", err)
					continue
				}
				if removed > 0 {
					slog.Info("Expired idle sessions", "removed", removed, "ttl", ttl)
				}
			}
		}
	}()
}
