package orchestrator

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/internal/epoch"
)

// StartCountdown begins the countdown to the next eligible hour. Only one
// countdown runs at a time. It cancels itself just before the boundary,
// rolling the session so the next cycle may vote.
func (o *Orchestrator) StartCountdown(ctx context.Context) {
	o.mu.Lock()
	if o.countdownOn {
		o.mu.Unlock()
		return
	}
	o.countdownOn = true
	o.mu.Unlock()

	// Create the ticker before spawning the goroutine so callers that
	// advance a fake clock right after StartCountdown returns cannot race
	// the ticker's registration.
	ticker := o.clock.NewTicker(time.Second)

	go func() {
		defer func() {
			o.mu.Lock()
			o.countdownOn = false
			o.mu.Unlock()
		}()

		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				remaining := time.Duration(epoch.NextHour(o.clock)-epoch.Current(o.clock)) * time.Second
				if remaining <= 2*time.Second {
					o.rollSession()
					o.display.ShowCountdownDone(msgNextVoteReady)
					return
				}
				o.display.ShowCountdown(remaining)
			}
		}
	}()
}

func (o *Orchestrator) countdownRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.countdownOn
}

// updateTimestamps is the per-minute refresher: it restarts the countdown
// when session state calls for one, renders how long ago the server was
// consulted, and refetches once the server data has outlived its cycle.
func (o *Orchestrator) updateTimestamps(ctx context.Context) {
	if o.store.Current() != nil || (o.store.Voted() && !o.countdownRunning()) {
		o.StartCountdown(ctx)
	}

	lastServer := o.store.LastServer()
	if lastServer == nil {
		if err := o.FetchLast(ctx); err != nil {
			log.Debug().Err(err).Msg("failed to fetch last result for timestamps")
		}
		return
	}

	now := o.clock.Now()
	fetched := time.Unix(lastServer.Timestamp-1, 0)
	o.display.ShowLastChecked(humanize.RelTime(fetched, now, "ago", "from now"))

	if now.Unix()-fetched.Unix() >= seconds(o.cfg.ServerDataMaxAge) {
		o.FetchAll(ctx)
	}
}
