package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/clients/vos_client"
	"github.com/voiceofseren/vostracker/go/internal/epoch"
)

// Submit validates the candidate vote and submits it, issuing at most one
// network POST per call and at most one successful vote per eligible hour.
func (o *Orchestrator) Submit(ctx context.Context) error {
	// Already voted this hour; the scan path logs the skip.
	if o.store.Voted() {
		return nil
	}

	// LastServer must be up to date before validating, otherwise we could
	// vote against stale server state.
	if err := o.FetchLast(ctx); err != nil {
		log.Debug().Err(err).Msg("could not refresh last result before validating")
	}

	res := o.checkDataValidity()
	if !res.valid {
		log.Debug().Msg("skipping vote: invalid data")
		o.store.ClearCurrent()
		o.Scan(ctx)
		return nil
	}

	// A redundant call slipped in while throttled: skip, and schedule the
	// release so voting re-enables quickly during primetime and lazily
	// otherwise.
	if o.store.Throttled() {
		delay := o.cfg.StandardRetry
		if epoch.MinuteOfHour(o.clock) <= o.primetimeMinutes() {
			delay = o.cfg.PrimetimeRetry
		}
		o.scheduleThrottleRelease(ctx, delay)
		log.Debug().Dur("retry_in", delay).Msg("skipping vote: submission throttled")
		return nil
	}

	// Re-read after the refresh; the validity pass may have mutated slots.
	current := o.store.Current()
	if current == nil {
		return nil
	}

	id, err := o.settings.UUID()
	if err != nil {
		return fmt.Errorf("load submitter uuid: %w", err)
	}

	req := vos_client.IncreaseCounterRequest{
		Clans: [2]string{current.Clans.Clan1.String(), current.Clans.Clan2.String()},
		UUID:  id,
	}
	if err := o.api.IncreaseCounter(ctx, req); err != nil {
		// Rejected and failed votes both stay retryable: Voted remains
		// false so the next tick can try again.
		o.display.ShowVoteError(msgVoteError)
		log.Debug().Err(err).Msg("vote submission failed")
		return err
	}

	if err := o.settings.IncrementVotedCount(); err != nil {
		log.Error().Err(err).Msg("failed to increment vote counter")
	}
	log.Debug().
		Str("clan_1", current.Clans.Clan1.String()).
		Str("clan_2", current.Clans.Clan2.String()).
		Msg("voted")

	o.store.SetVoted(true)
	o.store.SetLastLocal(current)

	// Refresh the displays with the data we just seeded and start counting
	// down to the next eligible hour.
	o.FetchAll(ctx)
	o.StartCountdown(ctx)
	return nil
}

// scheduleThrottleRelease re-enables submission after d.
func (o *Orchestrator) scheduleThrottleRelease(ctx context.Context, d time.Duration) {
	timer := o.clock.NewTimer(d)
	go func() {
		select {
		case <-timer.Chan():
			o.store.SetThrottled(false)
		case <-ctx.Done():
			stopAndDrainTimer(timer)
		}
	}()
}
