package orchestrator

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/internal/models"
)

// alertFavorite raises a notification when a freshly reported pairing
// includes a clan the user favorited. The notification clears itself after
// the configured hold.
func (o *Orchestrator) alertFavorite(ctx context.Context, clan1, clan2 models.Clan) {
	favorites, err := o.settings.FavoriteClans()
	if err != nil {
		log.Error().Err(err).Msg("failed to load favorite clans")
		return
	}

	var active []string
	for _, clan := range []models.Clan{clan1, clan2} {
		if favorites[clan] {
			active = append(active, clan.Display())
		}
	}
	if len(active) == 0 {
		return
	}

	o.notifier.Notify(msgFavoritePrefix + strings.Join(active, " and "))

	timer := o.clock.NewTimer(o.cfg.NotifyHold)
	go func() {
		select {
		case <-timer.Chan():
			o.notifier.Clear()
		case <-ctx.Done():
			stopAndDrainTimer(timer)
		}
	}()
}
