package app

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultPollInterval = 60 * time.Second
	retryBase           = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// Refreshable is a collection the refresher keeps current.
type Refreshable interface {
	Name() string
	FetchAll(ctx context.Context) error
}

// StartRefresher launches a background goroutine that re-fetches each
// collection at a fixed cadence, backing off while fetches fail. It returns
// immediately.
//
// Shopping lists must not be passed here: a list refetch re-seeds the purchase
// overlay of the list on screen.
func StartRefresher(ctx context.Context, interval time.Duration, logger *slog.Logger, collections ...Refreshable) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	for _, c := range collections {
		go refreshLoop(ctx, c, interval, logger.With(slog.String("collection", c.Name())))
	}
}

func refreshLoop(ctx context.Context, c Refreshable, interval time.Duration, logger *slog.Logger) {
	failures := 0
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		wait := interval
		if err := refresh(ctx, c, interval); err != nil {
			failures++
			wait = calculateBackoff(failures, min(interval, retryBase))
			logger.Warn("refresh failed",
				slog.Int("failures", failures),
				slog.Duration("retry_in", wait),
				slog.Any("error", err))
		} else {
			if failures > 0 {
				logger.Info("refresh recovered", slog.Int("failures", failures))
			}
			failures = 0
		}
		timer.Reset(wait)
	}
}

// refresh runs one FetchAll bounded by timeout.
func refresh(ctx context.Context, c Refreshable, timeout time.Duration) error {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.FetchAll(fetchCtx)
}

// calculateBackoff doubles base for every consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
