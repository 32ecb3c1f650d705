package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/voiceofseren/vostracker/go/internal/detector"
	"github.com/voiceofseren/vostracker/go/internal/models"
)

func TestTickScansAndVotes(t *testing.T) {
	h := newHarness(t, atOffset(10*time.Minute))
	h.det.QueueResult(map[models.Clan]detector.Point{
		models.ClanHefin:    {X: 10},
		models.ClanIorwerth: {X: 50},
	})

	h.o.tick(context.Background())

	votes := h.api.submitted()
	if len(votes) != 1 {
		t.Fatalf("expected one vote from a full tick, got %d", len(votes))
	}
	if votes[0].Clans != [2]string{"hefin", "iorwerth"} {
		t.Fatalf("vote clans = %v", votes[0].Clans)
	}
	if !h.store.Voted() {
		t.Fatal("tick should have marked the hour as voted")
	}
}

func TestTickSkipsWhenThrottled(t *testing.T) {
	h := newHarness(t, atOffset(10*time.Minute))
	h.store.SetThrottled(true)

	h.o.tick(context.Background())

	if h.det.Scans() != 0 {
		t.Fatal("a throttled tick must not scan")
	}
	if _, lastCalls, voteCalls := h.api.counts(); lastCalls != 0 || voteCalls != 0 {
		t.Fatal("a throttled tick must not touch the API")
	}
}

func TestTickSkipsInactiveWindowOutsidePrimetime(t *testing.T) {
	h := newHarness(t, atOffset(10*time.Minute))
	h.det.Active = false

	h.o.tick(context.Background())

	if h.det.Scans() != 0 {
		t.Fatal("an unfocused game window must not be scanned outside primetime")
	}
}

func TestTickScansInactiveWindowDuringPrimetime(t *testing.T) {
	h := newHarness(t, atOffset(time.Minute))
	h.det.Active = false
	h.det.QueueResult(map[models.Clan]detector.Point{
		models.ClanHefin:    {X: 10},
		models.ClanIorwerth: {X: 50},
	})

	h.o.tick(context.Background())

	if h.det.Scans() != 1 {
		t.Fatal("primetime overrides the focus gate")
	}
}

func TestTickPrimetimeRevote(t *testing.T) {
	h := newHarness(t, atOffset(time.Minute))
	h.store.SetCurrent(vote(hourStart+30, models.ClanHefin, models.ClanIorwerth))
	h.store.SetVoted(true)

	h.o.tick(context.Background())

	if h.store.Voted() {
		t.Fatal("primetime should reopen voting")
	}
	if !h.store.Throttled() {
		t.Fatal("the re-vote allowance must arm the throttle")
	}

	// The throttle releases itself shortly after.
	h.clock.Advance(31 * time.Second)
	waitFor(t, func() bool { return !h.store.Throttled() }, "throttle was never released")
}

func TestTickPromotesStaleRepeat(t *testing.T) {
	h := newHarness(t, atOffset(time.Minute))

	// The candidate is well past the boundary but still shows last hour's
	// leading clan: it IS last hour's data.
	h.store.SetLastLocal(vote(hourStart-1800, models.ClanHefin, models.ClanIorwerth))
	h.store.SetCurrent(vote(hourStart+60, models.ClanHefin, models.ClanIorwerth))
	h.store.SetVoted(true)

	h.o.tick(context.Background())

	if h.store.Current() != nil {
		t.Fatal("the stale repeat should be cleared")
	}
	last := h.store.LastLocal()
	if last == nil || last.Timestamp != hourStart+60 {
		t.Fatalf("the stale repeat should replace the last vote, got %v", last)
	}
	if h.det.Scans() != 0 {
		t.Fatal("promoting a stale repeat ends the tick before scanning")
	}
}
