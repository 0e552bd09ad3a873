package cli

import (
	"context"
	"log/slog"
	"time"
)

// Watcher reports the ids of changed documents.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// settle is how long Watch waits after a change before rendering, so that
// editors writing a file in several steps trigger a single render.
var settle = 100 * time.Millisecond

// Watch calls render once and then again after every change reported by w,
// until ctx is done or the watcher stops.
// Render errors are logged and do not stop the loop; the next change may fix them.
func Watch(ctx context.Context, w Watcher, logger *slog.Logger, render func(context.Context) error) error {
	events, err := w.Watch(ctx)
	if err != nil {
		return err
	}
	if err := render(ctx); err != nil {
		logger.Error("Render failed", "err", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-events:
			if !ok {
				return nil
			}
			logger.Info("Change detected", "id", id)
			if !drain(ctx, events) {
				return nil
			}
			if err := render(ctx); err != nil {
				logger.Error("Render failed", "err", err)
			}
		}
	}
}

// drain swallows the burst of events following a change.
// It returns false when ctx is done or the channel closes.
func drain(ctx context.Context, events <-chan string) bool {
	timer := time.NewTimer(settle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case _, ok := <-events:
			if !ok {
				return false
			}
		case <-timer.C:
			return true
		}
	}
}
