package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/internal/epoch"
)

// Run starts every periodic driver of the vote cycle and blocks until ctx is
// cancelled: the scan scheduler, the hourly-proximity fetch trigger, the
// per-minute timestamp refresher, and the coarse forced refresh.
func (o *Orchestrator) Run(ctx context.Context) {
	log.Info().
		Dur("scan_interval", o.cfg.ScanInterval).
		Dur("primetime_window", o.cfg.PrimetimeWindow).
		Msg("vote tracker started")

	o.FetchAll(ctx)

	loops := []struct {
		name     string
		interval time.Duration
		fn       func(context.Context)
	}{
		{"scan", o.cfg.ScanInterval, o.tick},
		{"hourly_fetch", o.cfg.HourlyTickInterval, o.hourlyFetch},
		{"timestamp_refresh", o.cfg.RefreshInterval, o.updateTimestamps},
		{"forced_refresh", o.cfg.ForcedRefreshInterval, o.FetchAll},
	}

	var wg sync.WaitGroup
	for _, loop := range loops {
		wg.Add(1)
		go func(name string, interval time.Duration, fn func(context.Context)) {
			defer wg.Done()
			o.runLoop(ctx, name, interval, fn)
		}(loop.name, loop.interval, loop.fn)
	}
	wg.Wait()

	log.Info().Msg("vote tracker stopped")
}

func (o *Orchestrator) runLoop(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) {
	ticker := o.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("loop", name).Msg("loop stopped")
			return
		case <-ticker.Chan():
			fn(ctx)
		}
	}
}

// tick is one pass of the automatic scan scheduler. Every guard failure is
// an independent, logged outcome; none of them crashes the loop.
func (o *Orchestrator) tick(ctx context.Context) {
	o.tickMu.Lock()
	defer o.tickMu.Unlock()

	minute := epoch.MinuteOfHour(o.clock)

	// Secondary sessions keep scanning through primetime even without
	// focus; outside it an unfocused game window means stale pixels.
	if !o.env.GameActive() && minute > o.primetimeMinutes() {
		log.Debug().Msg("skipping scan: game window not active outside of primetime")
		return
	}

	if o.store.Throttled() {
		log.Debug().Msg("skipping scan: vote is being throttled")
		return
	}

	voted := o.store.Voted()

	// During primetime allow a re-vote every throttle window to better seed
	// data while the authoritative value settles.
	if voted && minute <= o.primetimeMinutes() {
		log.Debug().Msg("primetime: already voted but allowed to vote again with recent data")
		o.store.SetVoted(false)
		o.store.SetThrottled(true)
		o.scheduleThrottleRelease(ctx, o.cfg.PrimetimeRetry)
	}

	// The authoritative reset lands some seconds after the boundary, not on
	// it. A candidate well past the boundary that still matches last hour
	// is last hour's data: promote it and start over.
	current := o.store.Current()
	lastLocal := o.store.LastLocal()
	lastServer := o.store.LastServer()
	if voted && minute <= o.primetimeMinutes() &&
		current != nil && lastLocal != nil &&
		epoch.Difference(current.Timestamp, lastLocal.Timestamp) > seconds(o.cfg.StaleRepeatAge) &&
		(current.Clans.Clan1 == lastLocal.Clans.Clan1 ||
			(lastServer != nil && current.Clans.Clan1 == lastServer.Clans.Clan1)) {
		log.Debug().Msg("skipping scan: current data matches data from last hour")
		o.store.SetLastLocal(current)
		o.store.ClearCurrent()
		return
	}

	o.Scan(ctx)
	o.sleep(ctx, o.cfg.SettleDelay) // let the store settle between the two
	o.Submit(ctx)
}
