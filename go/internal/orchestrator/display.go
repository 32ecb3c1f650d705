package orchestrator

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/internal/models"
)

// Messages rendered on the status surface.
const (
	msgNoCurrentData  = "No data found. You can help by visiting Prifddinas and submitting data!"
	msgServerReset    = "Server was reset - no data for previous hour."
	msgFetchError     = "API Error: Please try again in a minute"
	msgVoteError      = "API Error: Please try again"
	msgNextVoteReady  = "The next vote is available!"
	msgFavoritePrefix = "The Voice of Seren is currently active in: "
)

// Display is the status surface the orchestrator renders to. The default
// implementation logs; a UI front-end supplies its own.
type Display interface {
	// ShowCurrent renders the server-confirmed current pairing.
	ShowCurrent(clan1, clan2 models.Clan)
	// ShowCurrentUnavailable renders a placeholder or error in place of the
	// current pairing.
	ShowCurrentUnavailable(msg string)
	// ShowLast renders the previous hour's confirmed pairing.
	ShowLast(clan1, clan2 models.Clan)
	// ShowLastUnavailable renders a placeholder or error in place of the
	// previous pairing.
	ShowLastUnavailable(msg string)
	// ShowCandidate renders a locally detected, not yet confirmed pairing.
	ShowCandidate(clan1, clan2 models.Clan)
	// ShowFound announces a fresh detection.
	ShowFound(clan1, clan2 models.Clan)
	// ShowVoteError renders a submission failure.
	ShowVoteError(msg string)
	// ShowLastChecked renders how long ago the server was last consulted.
	ShowLastChecked(ago string)
	// ShowCountdown renders the time remaining until the next eligible hour.
	ShowCountdown(remaining time.Duration)
	// ShowCountdownDone announces that voting has reopened.
	ShowCountdownDone(msg string)
}

// Notifier raises attention-grabbing alerts, e.g. for favorited clans.
type Notifier interface {
	Notify(msg string)
	Clear()
}

// LogDisplay renders the status surface as log lines.
type LogDisplay struct {
	mu sync.Mutex
	// serverCurrent tracks whether the current panel already shows
	// authoritative server data; candidates must not overwrite it.
	serverCurrent bool
}

func NewLogDisplay() *LogDisplay {
	return &LogDisplay{}
}

func (d *LogDisplay) ShowCurrent(clan1, clan2 models.Clan) {
	d.mu.Lock()
	d.serverCurrent = true
	d.mu.Unlock()
	log.Info().
		Str("clan_1", clan1.Display()).
		Str("clan_2", clan2.Display()).
		Msg("current voice of seren")
}

func (d *LogDisplay) ShowCurrentUnavailable(msg string) {
	d.mu.Lock()
	d.serverCurrent = false
	d.mu.Unlock()
	log.Info().Msg(msg)
}

func (d *LogDisplay) ShowLast(clan1, clan2 models.Clan) {
	log.Info().
		Str("clan_1", clan1.Display()).
		Str("clan_2", clan2.Display()).
		Msg("last voice of seren")
}

func (d *LogDisplay) ShowLastUnavailable(msg string) {
	log.Info().Msg(msg)
}

func (d *LogDisplay) ShowCandidate(clan1, clan2 models.Clan) {
	d.mu.Lock()
	confirmed := d.serverCurrent
	d.mu.Unlock()
	if confirmed {
		return
	}
	log.Info().
		Str("clan_1", clan1.Display()).
		Str("clan_2", clan2.Display()).
		Msg("detected voice of seren (unconfirmed)")
}

func (d *LogDisplay) ShowFound(clan1, clan2 models.Clan) {
	log.Info().
		Str("clan_1", clan1.Display()).
		Str("clan_2", clan2.Display()).
		Msg("found clans")
}

func (d *LogDisplay) ShowVoteError(msg string) {
	log.Error().Msg(msg)
}

func (d *LogDisplay) ShowLastChecked(ago string) {
	log.Info().Str("last_server_check", ago).Msg("server check")
}

func (d *LogDisplay) ShowCountdown(remaining time.Duration) {
	log.Debug().Dur("remaining", remaining).Msg("next vote countdown")
}

func (d *LogDisplay) ShowCountdownDone(msg string) {
	log.Info().Msg(msg)
}

// LogNotifier logs notifications instead of raising host tooltips.
type LogNotifier struct{}

func (n *LogNotifier) Notify(msg string) {
	log.Info().Msg(msg)
}

func (n *LogNotifier) Clear() {}
