// Package protocol classifies single lines of the pipe-delimited battle
// protocol into typed events.
package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pable/go-battle-stats/internal/model"
)

// FuseMarker joins a move line with its trailing annotation and damage lines.
// The ASCII unit separator never occurs in protocol text.
const FuseMarker = "\x1f"

// Kind is the semantic type of a protocol line.
type Kind int

const (
	KindNone Kind = iota
	KindPlayer
	KindReveal
	KindSwitch
	KindChat
	KindJoin
	KindBoost
	KindHeal
	KindSetHP
	KindDamage
	KindMove
	KindFaint
)

var kindNames = [...]string{
	KindNone:   "none",
	KindPlayer: "player",
	KindReveal: "reveal",
	KindSwitch: "switch",
	KindChat:   "chat",
	KindJoin:   "join",
	KindBoost:  "boost",
	KindHeal:   "heal",
	KindSetHP:  "sethp",
	KindDamage: "damage",
	KindMove:   "move",
	KindFaint:  "faint",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "?"
	}
	return kindNames[k]
}

// Cause identifies the source annotated on a damage line.
type Cause int

const (
	CauseNone Cause = iota // direct, unannotated damage
	CauseToxic
	CausePoison
	CauseBurn
	CauseItem
	CauseStealthRock
	CauseSpikes
	CauseRecoil
	CauseOther
)

func (c Cause) String() string {
	switch c {
	case CauseNone:
		return "none"
	case CauseToxic:
		return "toxic"
	case CausePoison:
		return "poison"
	case CauseBurn:
		return "burn"
	case CauseItem:
		return "item"
	case CauseStealthRock:
		return "stealth_rock"
	case CauseSpikes:
		return "spikes"
	case CauseRecoil:
		return "recoil"
	default:
		return "other"
	}
}

// Health is a parsed health field such as "70/100 par" or "0 fnt".
type Health struct {
	Percent int
	Fainted bool
	Status  string
}

// Event is the classified form of one (possibly fused) protocol line.
type Event struct {
	Kind Kind
	Tag  string

	Side       string // "p1"/"p2" for player, reveal, switch and identity-bearing lines
	Subject    string // combatant name, or player name for player/chat/join
	TargetSide string
	Target     string // move target
	Text       string // chat message or switch details species
	Gender     model.Gender

	Value  int // boost amount
	HP     Health
	HasHP  bool
	Cause  Cause
	Source string // raw "[from]" annotation

	// Fused move annotations.
	Damaged       bool
	Crit          bool
	Effectiveness int // +1 super effective, -1 resisted, 0 neutral
}

// ParseIdent splits a combatant identity "p1a: Garchomp" into side and name.
func ParseIdent(s string) (side, name string, ok bool) {
	pos, name, found := strings.Cut(s, ": ")
	if !found || len(pos) < 2 || pos[0] != 'p' {
		return "", "", false
	}
	side = pos[:2]
	if side[1] < '1' || side[1] > '4' {
		return "", "", false
	}
	return side, name, true
}

// ParseDetails reads the species and gender from a details field such as
// "Garchomp, L50, F, shiny". A missing gender token means genderless.
func ParseDetails(s string) (species string, gender model.Gender) {
	parts := strings.Split(s, ", ")
	species = strings.TrimSpace(parts[0])
	gender = model.GenderGenderless
	for _, p := range parts[1:] {
		switch strings.TrimSpace(p) {
		case "M":
			gender = model.GenderMale
		case "F":
			gender = model.GenderFemale
		}
	}
	return species, gender
}

// ParseHealth parses "cur/max[ status]" or "0 fnt" into a percentage.
// A non-zero health that rounds to zero reports 1.
func ParseHealth(s string) (Health, error) {
	s = strings.TrimSpace(s)
	value, status, _ := strings.Cut(s, " ")
	h := Health{Status: status}
	if status == "fnt" {
		h.Fainted = true
	}
	curStr, maxStr, hasMax := strings.Cut(value, "/")
	cur, err := strconv.Atoi(curStr)
	if err != nil {
		return Health{}, fmt.Errorf("health %q: %w", s, err)
	}
	total := 100
	if hasMax {
		total, err = strconv.Atoi(maxStr)
		if err != nil {
			return Health{}, fmt.Errorf("health %q: %w", s, err)
		}
		if total <= 0 {
			return Health{}, fmt.Errorf("health %q: non-positive max", s)
		}
	}
	pct := int(math.Round(float64(cur) * 100 / float64(total)))
	if pct == 0 && cur > 0 {
		pct = 1
	}
	h.Percent = min(max(pct, 0), 100)
	if h.Percent == 0 {
		h.Fainted = true
	}
	return h, nil
}

// hasField reports whether any field starts with prefix.
func hasField(fields []string, prefix string) bool {
	for _, f := range fields {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}

// fieldValue returns the remainder of the first field starting with prefix.
func fieldValue(fields []string, prefix string) (string, bool) {
	for _, f := range fields {
		if v, ok := strings.CutPrefix(f, prefix); ok {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}
