package orchestrator

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/internal/epoch"
)

// validityResult classifies the candidate vote. rescan is set when a rule
// wants fresh detector data rather than just a cleanup.
type validityResult struct {
	valid   bool
	rescan  bool
	reasons []string
}

// checkDataValidity decides whether the candidate vote may be submitted for
// the current hour. Every rule runs and every rejection reason is collected;
// nothing short-circuits. Rules delete the entries they invalidate, and
// callers rely on that cleanup, so the checker deliberately mixes query and
// mutation.
//
// The rules compare against the slot values captured on entry, not against
// the post-deletion store, so a later rule still sees what an earlier rule
// removed.
func (o *Orchestrator) checkDataValidity() validityResult {
	now := epoch.Current(o.clock)
	current := o.store.Current()
	lastLocal := o.store.LastLocal()
	lastServer := o.store.LastServer()

	var res validityResult
	reject := func(format string, args ...any) {
		res.reasons = append(res.reasons, fmt.Sprintf(format, args...))
	}

	// A confirmed vote only prevents duplicates for two hours; after that
	// it is dropped before the remaining rules can compare against it.
	if lastLocal != nil && epoch.ExceedsThreshold(lastLocal.Timestamp, now, seconds(o.cfg.LastVoteMaxAge)) {
		reject("invalid data: LastLocal older than 2 hours, timestamp %d", lastLocal.Timestamp)
		o.store.ClearLastLocal()
		lastLocal = nil
	}

	if !current.Complete() {
		reject("invalid data: missing Current data")
		o.store.ClearCurrent()
		res.rescan = true
	}

	// Same leading clan as our own previous hour means the screen still
	// showed last cycle's pairing.
	if current != nil && lastLocal != nil && current.Clans.Clan1 == lastLocal.Clans.Clan1 {
		reject("invalid data: Current matches Last (local)")
		o.store.ClearCurrent()
		res.rescan = true
	}

	// Defensive duplicate of the missing-data check.
	if current == nil || current.Clans.Clan1 == "" {
		reject("invalid data: data is undefined")
	}

	// Same leading clan as the server's previous hour.
	if current != nil && lastServer != nil && current.Clans.Clan1 == lastServer.Clans.Clan1 {
		reject("invalid data: Current matches Last (server)")
		o.store.ClearCurrent()
	}

	// Stale detection.
	if current != nil && epoch.ExceedsThreshold(current.Timestamp, now, seconds(o.cfg.Freshness)) {
		reject("invalid data: Current is older than %s", o.cfg.Freshness)
		o.store.ClearCurrent()
	}

	// Straight after the boundary the authoritative value has statistically
	// not rotated yet; without last hour's data to compare against, an
	// early detection cannot be trusted.
	if lastLocal == nil &&
		epoch.MinuteOfHour(o.clock) == 0 &&
		epoch.SecondOfMinute(o.clock) <= int(seconds(o.cfg.EarlyHourHold)) {
		reject("invalid data: voice unlikely to have changed")
		o.store.ClearCurrent()
	}

	if len(res.reasons) > 0 {
		for _, reason := range res.reasons {
			log.Debug().Msg(reason)
		}
		return res
	}

	log.Debug().
		Str("clan_1", current.Clans.Clan1.String()).
		Str("clan_2", current.Clans.Clan2.String()).
		Int64("timestamp", current.Timestamp).
		Msg("valid data found")
	res.valid = true
	return res
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}
