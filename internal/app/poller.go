package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/five82/bookshelf/internal/reactive"
	"github.com/five82/bookshelf/internal/state"
)

const maxBackoff = 5 * time.Minute

// Refresher is the part of catalog.Screen the poller drives.
type Refresher interface {
	Refresh()
	Snapshot() state.Snapshot
}

// StartPoller launches a background goroutine that re-syncs the screen at a
// fixed cadence, backing off while the source keeps failing. Refresh is
// always posted to d, never called directly. A tick that finds a fetch still
// in flight is skipped, so a slow source is never cancelled by the poller.
// Backoff is decided at tick time from the last settled fetch. A
// non-positive interval disables polling. It returns immediately.
func StartPoller(ctx context.Context, d reactive.Dispatcher, r Refresher, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 || d == nil || r == nil {
		return
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	go func() {
		wait := interval
		var last time.Time
		for {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			wait = interval

			snap := r.Snapshot()
			if snap.Loading {
				logger.Debug("refresh skipped, fetch in flight")
				continue
			}
			due := calculateBackoff(snap.ConsecutiveFailures, interval)
			if remaining := due - time.Since(last); !last.IsZero() && remaining > 0 {
				logger.Debug("refresh backing off", "failures", snap.ConsecutiveFailures, "interval", due)
				wait = remaining
				continue
			}
			d.Post(r.Refresh)
			last = time.Now()
		}
	}()
}

// calculateBackoff doubles the interval for each consecutive failure, capped
// at maxBackoff.
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
