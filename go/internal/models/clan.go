package models

import (
	"fmt"
	"strings"
)

// Clan is one of the eight Elven clans in its lower-case wire form, the
// spelling the vote server expects and returns.
type Clan string

const (
	ClanAmlodd    Clan = "amlodd"
	ClanCadarn    Clan = "cadarn"
	ClanCrwys     Clan = "crwys"
	ClanHefin     Clan = "hefin"
	ClanIorwerth  Clan = "iorwerth"
	ClanIthell    Clan = "ithell"
	ClanMeilyr    Clan = "meilyr"
	ClanTrahaearn Clan = "trahaearn"
)

// AllClans lists every clan in a fixed order.
var AllClans = []Clan{
	ClanAmlodd,
	ClanCadarn,
	ClanCrwys,
	ClanHefin,
	ClanIorwerth,
	ClanIthell,
	ClanMeilyr,
	ClanTrahaearn,
}

// ParseClan normalizes a server- or detector-provided identifier into a Clan.
func ParseClan(s string) (Clan, error) {
	c := Clan(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown clan %q", s)
	}
	return c, nil
}

// Valid reports whether c is one of the eight known clans.
func (c Clan) Valid() bool {
	switch c {
	case ClanAmlodd, ClanCadarn, ClanCrwys, ClanHefin,
		ClanIorwerth, ClanIthell, ClanMeilyr, ClanTrahaearn:
		return true
	}
	return false
}

func (c Clan) String() string {
	return string(c)
}

// Display returns the capitalized form used for user-facing output.
func (c Clan) Display() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[0])) + string(c[1:])
}
