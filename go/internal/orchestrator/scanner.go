package orchestrator

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/internal/detector"
	"github.com/voiceofseren/vostracker/go/internal/epoch"
	"github.com/voiceofseren/vostracker/go/internal/models"
)

// Scan performs one scan attempt: it rolls the session across a crossed
// boundary, skips when a usable candidate already exists, and otherwise asks
// the detector for fresh data and installs it as the new candidate.
func (o *Orchestrator) Scan(ctx context.Context) {
	now := epoch.Current(o.clock)
	current := o.store.Current()
	voted := o.store.Voted()

	if current != nil && !o.store.Throttled() {
		if now > o.store.NextEligible() {
			o.rollSession()
		}

		if voted {
			log.Debug().
				Str("clan_1", current.Clans.Clan1.String()).
				Str("clan_2", current.Clans.Clan2.String()).
				Msg("skipping scan: already voted this hour")
			o.display.ShowCandidate(current.Clans.Clan1, current.Clans.Clan2)
			return
		}

		log.Debug().
			Str("clan_1", current.Clans.Clan1.String()).
			Str("clan_2", current.Clans.Clan2.String()).
			Msg("skipping scan: already have valid data")
		return
	}

	if o.inVenueCooldown(now) {
		log.Debug().Msg("skipping scan: venue cooldown active")
		return
	}

	found := o.detector.Scan()
	if len(found) > 2 {
		log.Warn().Int("count", len(found)).Msg("detector fault: more than two clans reported")
		return
	}
	// Zero hits means the player is outside the venue; one hit means the
	// second icon was likely obscured. Either way the data cannot back a
	// vote, so the candidate goes and scanning cools down.
	if len(found) <= 1 {
		o.store.ClearCurrent()
		log.Debug().Int("count", len(found)).Msg("invalid data: outside of Prifddinas (likely)")
		o.startVenueCooldown(now)
		return
	}

	clan1, clan2 := orderByPosition(found)
	vote := &models.ClanVote{
		Timestamp: now,
		Clans:     models.ClanPair{Clan1: clan1, Clan2: clan2},
	}

	o.display.ShowFound(clan1, clan2)
	o.store.SetCurrent(vote)
	o.store.SetNextEligible(epoch.NextHour(o.clock))

	// Courtesy follow-up: the superseded candidate being fresh means the
	// rotation was already observed moments ago, so try to vote now instead
	// of waiting for the next tick.
	if !voted && current != nil && !epoch.ExceedsThreshold(current.Timestamp, now, seconds(o.cfg.CourtesyWindow)) {
		o.Submit(ctx)
	}
}

// rollSession is the boundary-crossing transition: a still-valid candidate
// is promoted to LastLocal, an aged one drags LastLocal down with it, and
// either way the candidate slot clears and voting reopens.
func (o *Orchestrator) rollSession() {
	now := epoch.Current(o.clock)
	if cur := o.store.Current(); cur != nil && !epoch.ExceedsThreshold(now, cur.Timestamp, seconds(o.cfg.LastVoteMaxAge)) {
		o.store.SetLastLocal(cur)
	} else {
		o.store.ClearLastLocal()
	}

	o.store.ClearCurrent()
	o.store.SetVoted(false)
}

// orderByPosition assigns clan_1/clan_2 by ascending horizontal position.
// Left-to-right on screen is the ordering rule, never detector insertion
// order; clan name breaks exact ties so the result stays deterministic.
func orderByPosition(found map[models.Clan]detector.Point) (models.Clan, models.Clan) {
	type hit struct {
		clan models.Clan
		x    int
	}
	hits := make([]hit, 0, len(found))
	for clan, pos := range found {
		hits = append(hits, hit{clan: clan, x: pos.X})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].x != hits[j].x {
			return hits[i].x < hits[j].x
		}
		return hits[i].clan < hits[j].clan
	})
	return hits[0].clan, hits[1].clan
}

func (o *Orchestrator) inVenueCooldown(now int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return now < o.cooldownUntil
}

func (o *Orchestrator) startVenueCooldown(now int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cooldownUntil = now + seconds(o.cfg.VenueCooldown)
}
