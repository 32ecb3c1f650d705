package models

import (
	"errors"
	"fmt"
)

// ClanPair holds the two active clans ordered left-to-right as they appear
// on screen. Clan1 is the leading clan and is the one duplicate checks key on.
type ClanPair struct {
	Clan1 Clan `json:"clan_1"`
	Clan2 Clan `json:"clan_2"`
}

// ClanVote is one detected or server-reported clan pairing.
//
// Timestamp is the detection time for locally scanned candidates and the
// fetch time for server-reported results. The eligibility boundary itself is
// tracked separately in the session store, so all freshness math here reads
// detection age.
type ClanVote struct {
	Timestamp int64    `json:"timestamp"`
	Clans     ClanPair `json:"clans"`
}

// Validate checks the ClanVote invariants: both clans set, distinct, and a
// usable timestamp.
func (v *ClanVote) Validate() error {
	if v == nil {
		return errors.New("vote is nil")
	}
	if v.Timestamp <= 0 {
		return errors.New("vote is missing a timestamp")
	}
	if !v.Clans.Clan1.Valid() {
		return fmt.Errorf("invalid clan_1 %q", v.Clans.Clan1)
	}
	if !v.Clans.Clan2.Valid() {
		return fmt.Errorf("invalid clan_2 %q", v.Clans.Clan2)
	}
	if v.Clans.Clan1 == v.Clans.Clan2 {
		return fmt.Errorf("clan_1 and clan_2 are both %q", v.Clans.Clan1)
	}
	return nil
}

// Complete reports whether the vote has both clans and a timestamp, without
// enforcing the distinctness invariant.
func (v *ClanVote) Complete() bool {
	return v != nil && v.Timestamp > 0 && v.Clans.Clan1 != "" && v.Clans.Clan2 != ""
}
