package connectors

import (
	"context"
	"time"

	"signalbridge/src/intake"
)

// messageHandler is the intake pipeline as seen by a transport.
type messageHandler interface {
	Handle(ctx context.Context, text, source string) (intake.Outcome, error)
}

// Notifier delivers operational alerts.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// sleep waits for d or until ctx is done and reports whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}
