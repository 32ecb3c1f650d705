package orchestrator

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/internal/epoch"
	"github.com/voiceofseren/vostracker/go/internal/models"
)

// FetchAll refreshes the current and previous hour from the server. The two
// fetches run independently; neither blocks the other, and each retries with
// backoff on its own. Only after a fetch exhausts its retry budget does the
// failure reach the display.
func (o *Orchestrator) FetchAll(ctx context.Context) {
	go func() {
		if err := o.retrier.Call(ctx, func() error { return o.FetchLast(ctx) }); err != nil {
			o.display.ShowLastUnavailable(msgFetchError)
			log.Debug().Err(err).Msg("giving up fetching last result")
		}
	}()
	go func() {
		if err := o.retrier.Call(ctx, func() error { return o.FetchCurrent(ctx) }); err != nil {
			o.display.ShowCurrentUnavailable(msgFetchError)
			log.Debug().Err(err).Msg("giving up fetching current result")
		}
	}()
}

// FetchCurrent fetches the current hour's pairing and reconciles it with the
// local candidate. The server is the tie-breaker: local detection is eager
// but provisional, so a disagreement clears the candidate and rescans.
func (o *Orchestrator) FetchCurrent(ctx context.Context) error {
	resp, err := o.api.GetCurrent(ctx)
	if err != nil {
		return err
	}

	// Missing fields mean the server has no authoritative data yet. Not an
	// error, and the local candidate is left alone.
	if !resp.HasData() {
		o.display.ShowCurrentUnavailable(msgNoCurrentData)
		return nil
	}

	clan1, err := models.ParseClan(resp.Clan1)
	if err != nil {
		return fmt.Errorf("current response: %w", err)
	}
	clan2, err := models.ParseClan(resp.Clan2)
	if err != nil {
		return fmt.Errorf("current response: %w", err)
	}

	// Fresh data relative to what we last saw from the server: update the
	// display and alert on favorited clans.
	lastServer := o.store.LastServer()
	if lastServer == nil || (clan1 != lastServer.Clans.Clan1 && clan2 != lastServer.Clans.Clan2) {
		o.display.ShowCurrent(clan1, clan2)
		o.alertFavorite(ctx, clan1, clan2)
	}

	current := o.store.Current()
	if current == nil || current.Clans.Clan1 != clan1 {
		log.Debug().Msg("invalid data: vote does not match server data, rescanning")
		o.store.ClearCurrent()
		o.Scan(ctx)
	}

	o.updateTimestamps(ctx)
	return nil
}

// FetchLast fetches the previous hour's confirmed pairing into LastServer.
func (o *Orchestrator) FetchLast(ctx context.Context) error {
	resp, err := o.api.GetLast(ctx)
	if err != nil {
		return err
	}

	if !resp.HasData() {
		o.display.ShowLastUnavailable(msgServerReset)
		return nil
	}

	clan1, err := models.ParseClan(resp.Clan1)
	if err != nil {
		return fmt.Errorf("last response: %w", err)
	}
	clan2, err := models.ParseClan(resp.Clan2)
	if err != nil {
		return fmt.Errorf("last response: %w", err)
	}

	o.display.ShowLast(clan1, clan2)

	pair := models.ClanPair{Clan1: clan1, Clan2: clan2}
	if ls := o.store.LastServer(); ls == nil || ls.Clans != pair {
		o.store.SetLastServer(&models.ClanVote{
			Timestamp: epoch.Current(o.clock),
			Clans:     pair,
		})
	}
	return nil
}
