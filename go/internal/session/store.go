// Package session holds the per-process vote-cycle state: the candidate vote
// for the upcoming hour, the last locally confirmed vote, the last
// server-reported result, and the flags gating submission. The store is
// snapshotted to SQLite on every write and pruned of stale entries on load.
package session

import (
	"encoding/json"
	"strconv"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/voiceofseren/vostracker/go/internal/epoch"
	"github.com/voiceofseren/vostracker/go/internal/models"
)

// Persisted slot names. These double as the row keys in the session table.
const (
	keyCurrent      = "Current"
	keyLastLocal    = "LastLocal"
	keyLastServer   = "LastServer"
	keyVoted        = "Voted"
	keyNextEligible = "NextEligible"
	keyThrottled    = "Throttled"
)

// Store is the typed session store. At most one candidate vote exists at a
// time; Voted is true only between a successful submission and the next hour
// boundary; Throttled is a short-lived suppression flag armed after a
// primetime re-vote.
//
// Multiple ticker goroutines mutate the store concurrently, so every access
// goes through the mutex. Callers re-read slots after any network call
// rather than trusting copies taken before it.
type Store struct {
	mu sync.RWMutex

	current      *models.ClanVote
	lastLocal    *models.ClanVote
	lastServer   *models.ClanVote
	voted        bool
	nextEligible int64
	throttled    bool

	db *DB // nil disables persistence
}

// NewStore returns an empty store. db may be nil for a memory-only store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Load reads the persisted session snapshot from db and prunes any vote
// entry whose timestamp falls within the hour before the currently-completed
// one: data timed to that window belongs to a finished cycle and must not
// seed the new one. Pruning rewrites the persisted rows.
func Load(db *DB, clock clockwork.Clock) (*Store, error) {
	s := NewStore(db)
	entries, err := db.sessionEntries()
	if err != nil {
		return nil, err
	}

	previousHour := epoch.PreviousHour(clock)
	stale := func(v *models.ClanVote) bool {
		return v.Timestamp >= previousHour && v.Timestamp < previousHour+epoch.SecondsPerHour
	}

	for _, key := range []string{keyCurrent, keyLastLocal, keyLastServer} {
		raw, ok := entries[key]
		if !ok {
			continue
		}
		var vote models.ClanVote
		if err := json.Unmarshal([]byte(raw), &vote); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("dropping unreadable session entry")
			s.persistDelete(key)
			continue
		}
		if vote.Timestamp > 0 && stale(&vote) {
			log.Debug().Str("key", key).Int64("timestamp", vote.Timestamp).
				Msg("pruned session entry from previous hour")
			s.persistDelete(key)
			continue
		}
		v := vote
		switch key {
		case keyCurrent:
			s.current = &v
		case keyLastLocal:
			s.lastLocal = &v
		case keyLastServer:
			s.lastServer = &v
		}
	}

	if raw, ok := entries[keyVoted]; ok {
		s.voted = raw == "true"
	}
	if raw, ok := entries[keyThrottled]; ok {
		s.throttled = raw == "true"
	}
	if raw, ok := entries[keyNextEligible]; ok {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.nextEligible = n
		}
	}

	return s, nil
}

// Current returns a copy of the candidate vote, or nil.
func (s *Store) Current() *models.ClanVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyVote(s.current)
}

// SetCurrent replaces the candidate vote.
func (s *Store) SetCurrent(v *models.ClanVote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = copyVote(v)
	s.persistVote(keyCurrent, s.current)
}

// ClearCurrent drops the candidate vote.
func (s *Store) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.persistDelete(keyCurrent)
}

// LastLocal returns a copy of the last vote this client confirmed, or nil.
func (s *Store) LastLocal() *models.ClanVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyVote(s.lastLocal)
}

// SetLastLocal records the last vote this client confirmed.
func (s *Store) SetLastLocal(v *models.ClanVote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLocal = copyVote(v)
	s.persistVote(keyLastLocal, s.lastLocal)
}

// ClearLastLocal drops the last locally confirmed vote.
func (s *Store) ClearLastLocal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLocal = nil
	s.persistDelete(keyLastLocal)
}

// LastServer returns a copy of the last server-reported result, or nil.
func (s *Store) LastServer() *models.ClanVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyVote(s.lastServer)
}

// SetLastServer records the last server-reported result.
func (s *Store) SetLastServer(v *models.ClanVote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastServer = copyVote(v)
	s.persistVote(keyLastServer, s.lastServer)
}

// Voted reports whether a submission has succeeded this eligible hour.
func (s *Store) Voted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voted
}

// SetVoted records whether a submission has succeeded this eligible hour.
func (s *Store) SetVoted(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voted = v
	s.persistBool(keyVoted, v)
}

// NextEligible returns the boundary after which voting is allowed again.
func (s *Store) NextEligible() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextEligible
}

// SetNextEligible records the boundary after which voting is allowed again.
func (s *Store) SetNextEligible(e int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEligible = e
	s.persistRaw(keyNextEligible, strconv.FormatInt(e, 10))
}

// Throttled reports whether actions are currently being suppressed.
func (s *Store) Throttled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.throttled
}

// SetThrottled arms or releases the suppression flag.
func (s *Store) SetThrottled(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.throttled = v
	s.persistBool(keyThrottled, v)
}

// Clear resets every slot and wipes the persisted snapshot.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.lastLocal = nil
	s.lastServer = nil
	s.voted = false
	s.nextEligible = 0
	s.throttled = false
	if s.db != nil {
		if err := s.db.clearSession(); err != nil {
			log.Error().Err(err).Msg("failed to clear persisted session")
		}
	}
}

func (s *Store) persistVote(key string, v *models.ClanVote) {
	if s.db == nil {
		return
	}
	if v == nil {
		s.persistDelete(key)
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to encode session entry")
		return
	}
	if err := s.db.setSession(key, string(raw)); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to persist session entry")
	}
}

func (s *Store) persistBool(key string, v bool) {
	s.persistRaw(key, strconv.FormatBool(v))
}

func (s *Store) persistRaw(key, value string) {
	if s.db == nil {
		return
	}
	if err := s.db.setSession(key, value); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to persist session entry")
	}
}

func (s *Store) persistDelete(key string) {
	if s.db == nil {
		return
	}
	if err := s.db.deleteSession(key); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to delete session entry")
	}
}

func copyVote(v *models.ClanVote) *models.ClanVote {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
