package clients

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Retrier re-runs a call with exponential backoff. Each attempt is preceded
// by a fixed base delay; after a failure the retrier additionally waits
// 2^attempt times the backoff unit before trying again. Once the attempt
// budget is exhausted the last error is returned unchanged so the caller can
// surface it.
type Retrier struct {
	Clock       clockwork.Clock
	MaxAttempts int
	BaseDelay   time.Duration
	BackoffUnit time.Duration
}

// NewRetrier returns a retrier with the production tuning: 7 retries, a one
// second base delay, and a 10ms backoff unit.
func NewRetrier(clock clockwork.Clock) *Retrier {
	return &Retrier{
		Clock:       clock,
		MaxAttempts: 7,
		BaseDelay:   time.Second,
		BackoffUnit: 10 * time.Millisecond,
	}
}

// Call runs fn until it succeeds, the attempt budget runs out, or ctx is
// cancelled.
func (r *Retrier) Call(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if sleepErr := r.sleep(ctx, r.BaseDelay); sleepErr != nil {
			return sleepErr
		}

		if err = fn(); err == nil {
			return nil
		}
		if attempt >= r.MaxAttempts {
			return err
		}

		log.Debug().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", r.MaxAttempts).
			Msg("attempting to connect to API again after error")

		backoff := r.BackoffUnit * (1 << attempt)
		if sleepErr := r.sleep(ctx, backoff); sleepErr != nil {
			return sleepErr
		}
	}
}

func (r *Retrier) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := r.Clock.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
