package session

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/voiceofseren/vostracker/go/internal/models"
)

// Settings persists the user-level knobs that outlive a session: the
// submitter UUID, the lifetime vote counter, the debug flag, and the set of
// favorite clans.
type Settings struct {
	db *DB
}

// NewSettings returns the settings surface backed by db.
func NewSettings(db *DB) *Settings {
	return &Settings{db: db}
}

// UUID returns the submitter UUID, generating and persisting one on first
// use. The UUID only feeds server-side seeder/leech statistics.
func (s *Settings) UUID() (string, error) {
	value, ok, err := s.db.getSetting("uuid")
	if err != nil {
		return "", fmt.Errorf("read uuid: %w", err)
	}
	if ok && value != "" {
		return value, nil
	}

	id := uuid.New().String()
	if err := s.db.setSetting("uuid", id); err != nil {
		return "", fmt.Errorf("persist uuid: %w", err)
	}
	return id, nil
}

// VotedCount returns the lifetime number of successful submissions.
func (s *Settings) VotedCount() (int, error) {
	value, ok, err := s.db.getSetting("votedCount")
	if err != nil {
		return 0, fmt.Errorf("read votedCount: %w", err)
	}
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse votedCount: %w", err)
	}
	return n, nil
}

// IncrementVotedCount bumps the lifetime vote counter by one.
func (s *Settings) IncrementVotedCount() error {
	n, err := s.VotedCount()
	if err != nil {
		return err
	}
	return s.db.setSetting("votedCount", strconv.Itoa(n+1))
}

// DebugMode reports whether verbose logging is enabled.
func (s *Settings) DebugMode() (bool, error) {
	value, ok, err := s.db.getSetting("debugMode")
	if err != nil {
		return false, fmt.Errorf("read debugMode: %w", err)
	}
	return ok && value == "true", nil
}

// SetDebugMode toggles verbose logging.
func (s *Settings) SetDebugMode(on bool) error {
	return s.db.setSetting("debugMode", strconv.FormatBool(on))
}

// FavoriteClans returns the set of clans the user wants alerts for.
func (s *Settings) FavoriteClans() (map[models.Clan]bool, error) {
	favorites := make(map[models.Clan]bool)
	value, ok, err := s.db.getSetting("favoriteClans")
	if err != nil {
		return nil, fmt.Errorf("read favoriteClans: %w", err)
	}
	if !ok || value == "" {
		return favorites, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(value), &names); err != nil {
		return nil, fmt.Errorf("parse favoriteClans: %w", err)
	}
	for _, name := range names {
		clan, err := models.ParseClan(name)
		if err != nil {
			continue
		}
		favorites[clan] = true
	}
	return favorites, nil
}

// SetFavorite adds or removes a clan from the favorites set.
func (s *Settings) SetFavorite(clan models.Clan, favorite bool) error {
	favorites, err := s.FavoriteClans()
	if err != nil {
		return err
	}
	if favorite {
		favorites[clan] = true
	} else {
		delete(favorites, clan)
	}

	names := make([]string, 0, len(favorites))
	for _, c := range models.AllClans {
		if favorites[c] {
			names = append(names, c.String())
		}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode favoriteClans: %w", err)
	}
	return s.db.setSetting("favoriteClans", string(raw))
}
