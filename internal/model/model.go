package model

import "math"

// Gender is the category tag carried by a combatant reveal line.
type Gender string

const (
	GenderMale       Gender = "M"
	GenderFemale     Gender = "F"
	GenderGenderless Gender = "N"
)

// ---- Match input assembled by the parser ----

// Combatant is one creature revealed in a player's team preview.
type Combatant struct {
	Name   string // canonical name, e.g. "Garchomp"
	Owner  string // normalized player key
	Gender Gender
}

// Player is one side of a match.
type Player struct {
	ID     string // identifier taken from the file name
	Name   string // display name from the |player| line
	Key    string // normalized Name, used as the registry key
	Side   string // "p1" or "p2"
	Roster []Combatant
}

type RawMatch struct {
	MatchID string // sha256 of the source file
	Source  string
	Week    int // 0 when not batching by week
	Players [2]Player
	Lines   []string          // preprocessed protocol lines: fused and alias-resolved
	Aliases map[string]string // side-qualified nickname -> canonical name
}

// Summary returns the stored header record of the match.
func (m *RawMatch) Summary(runID, parsedAt string) MatchSummary {
	return MatchSummary{
		MatchID:    m.MatchID,
		Source:     m.Source,
		Week:       m.Week,
		Player1:    m.Players[0].Name,
		Player2:    m.Players[1].Name,
		Lines:      len(m.Lines),
		ParsedAt:   parsedAt,
		RunID:      runID,
		Combatants: len(m.Players[0].Roster) + len(m.Players[1].Roster),
	}
}

// ---- Per-combatant statistics ----

// Stat is a column of the per-match combatant table. The order of the
// constants is the output column order.
type Stat int

const (
	StatDamageGiven Stat = iota
	StatDamageReceived
	StatDamageHealed
	StatDamageToxic
	StatDamagePoison
	StatDamageBurn
	StatDamageItem
	StatDamageStealthRock
	StatDamageSpikes
	StatDamageRecoil
	StatDamageOther
	StatBoosts

	NumStats
)

var statNames = [NumStats]string{
	"damage_given",
	"damage_received",
	"damage_healed",
	"damage_toxic",
	"damage_poison",
	"damage_burn",
	"damage_item",
	"damage_stealth_rock",
	"damage_spikes",
	"damage_recoil",
	"damage_other",
	"boosts",
}

func (s Stat) String() string {
	if s < 0 || s >= NumStats {
		return "?"
	}
	return statNames[s]
}

// StatNames returns the column names in output order.
func StatNames() []string {
	return append([]string(nil), statNames[:]...)
}

// CombatantMatchStats is one row of the combatant/match table.
type CombatantMatchStats struct {
	MatchID   string
	Week      int
	Player    string // normalized player key
	Combatant string
	Gender    Gender

	Values [NumStats]int

	FinalHealth int
	Fainted     bool
}

func (s CombatantMatchStats) Get(st Stat) int { return s.Values[st] }

// DamageByCause sums the cause-tagged damage columns.
func (s CombatantMatchStats) DamageByCause() int {
	total := 0
	for st := StatDamageToxic; st <= StatDamageOther; st++ {
		total += s.Values[st]
	}
	return total
}

// ---- Per-player statistics ----

// PlayerStat is a column of the player table.
type PlayerStat int

const (
	PlayerChatNum PlayerStat = iota
	PlayerChatLen
	PlayerJoinNum
	PlayerMale
	PlayerFemale
	PlayerGenderless
	PlayerMatches

	NumPlayerStats
)

var playerStatNames = [NumPlayerStats]string{
	"chat_num",
	"chat_len",
	"join_num",
	"male",
	"female",
	"genderless",
	"matches",
}

func (s PlayerStat) String() string {
	if s < 0 || s >= NumPlayerStats {
		return "?"
	}
	return playerStatNames[s]
}

func PlayerStatNames() []string {
	return append([]string(nil), playerStatNames[:]...)
}

// GenderStat maps a reveal gender onto its team composition column.
func GenderStat(g Gender) PlayerStat {
	switch g {
	case GenderMale:
		return PlayerMale
	case GenderFemale:
		return PlayerFemale
	default:
		return PlayerGenderless
	}
}

// PlayerRow is one row of the player table, per week when batching.
type PlayerRow struct {
	Week   int
	Key    string
	Name   string
	ID     string
	Values [NumPlayerStats]int
}

// AvgChatLen is NaN for a player who never chatted.
func (r PlayerRow) AvgChatLen() float64 {
	if r.Values[PlayerChatNum] == 0 {
		return math.NaN()
	}
	return float64(r.Values[PlayerChatLen]) / float64(r.Values[PlayerChatNum])
}

// MatchSummary is a lightweight record for list/show commands.
type MatchSummary struct {
	MatchID    string
	Source     string
	Week       int
	Player1    string
	Player2    string
	Lines      int
	ParsedAt   string
	RunID      string
	Combatants int
}

// Run records one invocation of parse, batch or league.
type Run struct {
	ID        string
	StartedAt string
	Mode      string
	Source    string
	Matches   int
	Failures  int
}
