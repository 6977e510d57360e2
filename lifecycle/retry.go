package lifecycle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fieldserve/inspector-api/models"
)

// RetryPolicy bounds how persistently an operation is reattempted. Delays grow
// by doubling: base, 2*base, 4*base.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	sleep       func(context.Context, time.Duration) error
}

// DefaultRetryPolicy retries three times starting at 200ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 200 * time.Millisecond, sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn until it succeeds, fails non-retryably, or attempts run out. Only
// transient faults are retried; validation, conflict, compliance and not-found
// failures return immediately.
func (p RetryPolicy) Do(ctx context.Context, name string, fn func() error) error {
	if p.sleep == nil {
		p.sleep = sleepCtx
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := p.BaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !models.IsRetryable(err) || attempt == attempts {
			return err
		}
		zap.S().Warnw("retrying after transient failure",
			"operation", name, "attempt", attempt, "delay", delay, "error", err)
		if serr := p.sleep(ctx, delay); serr != nil {
			return err
		}
		delay *= 2
	}
	return err
}
