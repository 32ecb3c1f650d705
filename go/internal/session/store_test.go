package session

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/voiceofseren/vostracker/go/internal/epoch"
	"github.com/voiceofseren/vostracker/go/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "vos.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func vote(ts int64, clan1, clan2 models.Clan) *models.ClanVote {
	return &models.ClanVote{
		Timestamp: ts,
		Clans:     models.ClanPair{Clan1: clan1, Clan2: clan2},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)
	clock := clockwork.NewFakeClockAt(time.Unix(100*3600+600, 0))
	now := epoch.Current(clock)

	s := NewStore(db)
	s.SetCurrent(vote(now, models.ClanHefin, models.ClanIorwerth))
	s.SetLastServer(vote(now-7300, models.ClanAmlodd, models.ClanCadarn))
	s.SetVoted(true)
	s.SetNextEligible(epoch.NextHour(clock))
	s.SetThrottled(true)

	loaded, err := Load(db, clock)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cur := loaded.Current()
	if cur == nil || cur.Clans.Clan1 != models.ClanHefin || cur.Clans.Clan2 != models.ClanIorwerth {
		t.Fatalf("Current = %+v, want hefin/iorwerth", cur)
	}
	if loaded.LastServer() == nil {
		t.Fatal("LastServer missing after reload")
	}
	if !loaded.Voted() {
		t.Fatal("Voted flag lost")
	}
	if !loaded.Throttled() {
		t.Fatal("Throttled flag lost")
	}
	if loaded.NextEligible() != epoch.NextHour(clock) {
		t.Fatalf("NextEligible = %d, want %d", loaded.NextEligible(), epoch.NextHour(clock))
	}
}

func TestLoadPrunesPreviousHourEntries(t *testing.T) {
	db := openTestDB(t)
	clock := clockwork.NewFakeClockAt(time.Unix(100*3600+600, 0)) // 100:10
	previousHour := epoch.PreviousHour(clock)                     // 98:00

	s := NewStore(db)
	// Timed inside [previousHour, previousHour+3600): stale, must be pruned.
	s.SetLastLocal(vote(previousHour+1800, models.ClanCrwys, models.ClanIthell))
	// Timed before the window: retained.
	s.SetLastServer(vote(previousHour-10, models.ClanMeilyr, models.ClanTrahaearn))

	loaded, err := Load(db, clock)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.LastLocal() != nil {
		t.Fatalf("LastLocal = %+v, want pruned", loaded.LastLocal())
	}
	if loaded.LastServer() == nil {
		t.Fatal("LastServer pruned but its timestamp is before the window")
	}

	// Pruning mutates the persisted representation: a second load with a
	// fresh store must not resurrect the entry.
	again, err := Load(db, clock)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again.LastLocal() != nil {
		t.Fatal("pruned entry came back on second load")
	}
}

func TestLoadPrunesWindowEdges(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(100*3600+600, 0))
	previousHour := epoch.PreviousHour(clock)

	cases := []struct {
		name   string
		ts     int64
		pruned bool
	}{
		{"window start", previousHour, true},
		{"just inside end", previousHour + 3599, true},
		{"window end", previousHour + 3600, false},
		{"before window", previousHour - 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := openTestDB(t)
			NewStore(db).SetLastServer(vote(tc.ts, models.ClanHefin, models.ClanAmlodd))
			loaded, err := Load(db, clock)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			got := loaded.LastServer() == nil
			if got != tc.pruned {
				t.Fatalf("timestamp %d: pruned = %v, want %v", tc.ts, got, tc.pruned)
			}
		})
	}
}

func TestClearWipesPersistedSnapshot(t *testing.T) {
	db := openTestDB(t)
	clock := clockwork.NewFakeClockAt(time.Unix(100*3600, 0))

	s := NewStore(db)
	s.SetCurrent(vote(epoch.Current(clock), models.ClanHefin, models.ClanIorwerth))
	s.SetVoted(true)
	s.Clear()

	loaded, err := Load(db, clock)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Current() != nil || loaded.Voted() {
		t.Fatal("Clear did not wipe the persisted snapshot")
	}
}

func TestStoreCopiesVotesOnReadAndWrite(t *testing.T) {
	s := NewStore(nil)
	original := vote(1000, models.ClanHefin, models.ClanIorwerth)
	s.SetCurrent(original)

	original.Clans.Clan1 = models.ClanAmlodd
	if got := s.Current(); got.Clans.Clan1 != models.ClanHefin {
		t.Fatal("store aliased the caller's vote on write")
	}

	read := s.Current()
	read.Clans.Clan1 = models.ClanCadarn
	if got := s.Current(); got.Clans.Clan1 != models.ClanHefin {
		t.Fatal("store aliased its vote on read")
	}
}

func TestSettingsUUIDLazyGeneration(t *testing.T) {
	db := openTestDB(t)
	settings := NewSettings(db)

	first, err := settings.UUID()
	if err != nil {
		t.Fatalf("UUID: %v", err)
	}
	if first == "" {
		t.Fatal("UUID returned empty string")
	}
	second, err := settings.UUID()
	if err != nil {
		t.Fatalf("UUID second read: %v", err)
	}
	if first != second {
		t.Fatalf("UUID not stable: %q then %q", first, second)
	}
}

func TestSettingsVotedCount(t *testing.T) {
	settings := NewSettings(openTestDB(t))

	n, err := settings.VotedCount()
	if err != nil || n != 0 {
		t.Fatalf("VotedCount = %d, %v; want 0, nil", n, err)
	}
	for i := 0; i < 3; i++ {
		if err := settings.IncrementVotedCount(); err != nil {
			t.Fatalf("IncrementVotedCount: %v", err)
		}
	}
	if n, _ := settings.VotedCount(); n != 3 {
		t.Fatalf("VotedCount = %d, want 3", n)
	}
}

func TestSettingsFavoriteClans(t *testing.T) {
	settings := NewSettings(openTestDB(t))

	favs, err := settings.FavoriteClans()
	if err != nil || len(favs) != 0 {
		t.Fatalf("FavoriteClans = %v, %v; want empty, nil", favs, err)
	}

	if err := settings.SetFavorite(models.ClanHefin, true); err != nil {
		t.Fatalf("SetFavorite: %v", err)
	}
	if err := settings.SetFavorite(models.ClanIorwerth, true); err != nil {
		t.Fatalf("SetFavorite: %v", err)
	}
	if err := settings.SetFavorite(models.ClanHefin, false); err != nil {
		t.Fatalf("SetFavorite remove: %v", err)
	}

	favs, err = settings.FavoriteClans()
	if err != nil {
		t.Fatalf("FavoriteClans: %v", err)
	}
	if len(favs) != 1 || !favs[models.ClanIorwerth] {
		t.Fatalf("FavoriteClans = %v, want only iorwerth", favs)
	}
}
