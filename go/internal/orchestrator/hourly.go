package orchestrator

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/internal/epoch"
)

// hourlyFetch fires server fetches only near the minute marks where fresh
// data is likely: early in the hour while the rotation settles, then every
// five minutes through the first half. Each firing is jittered so the
// deployed population does not hit the server in lockstep, and a suppression
// window keeps the 15s driver from re-firing within the same mark.
func (o *Orchestrator) hourlyFetch(ctx context.Context) {
	o.mu.Lock()
	if o.recentlyFetched {
		o.mu.Unlock()
		return
	}
	minute := epoch.MinuteOfHour(o.clock)
	if !fetchMinute(minute) {
		o.mu.Unlock()
		return
	}
	o.recentlyFetched = true
	o.mu.Unlock()

	var jitter time.Duration
	if o.cfg.FetchJitterMax > 0 {
		jitter = time.Duration(rand.Int64N(int64(o.cfg.FetchJitterMax)))
	}
	log.Debug().Int("minute", minute).Dur("jitter", jitter).Msg("scheduling hourly fetch")

	go func() {
		o.sleep(ctx, jitter)
		o.FetchAll(ctx)
	}()
	go func() {
		// Shortly after the jittered fetch we are eligible to fire again.
		o.sleep(ctx, jitter*5)
		o.mu.Lock()
		o.recentlyFetched = false
		o.mu.Unlock()
	}()
}

func fetchMinute(minute int) bool {
	switch minute {
	case 2, 3, 4:
		return true
	}
	return minute%5 == 0 && minute <= 30
}
