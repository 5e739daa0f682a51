package aggregator

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/pable/go-battle-stats/internal/health"
	"github.com/pable/go-battle-stats/internal/model"
	"github.com/pable/go-battle-stats/internal/parser"
	"github.com/pable/go-battle-stats/internal/protocol"
)

// ErrUnknownCombatant is returned when a line references a combatant that is
// not in either roster.
var ErrUnknownCombatant = errors.New("unknown combatant")

// causeStats maps damage causes onto their combatant columns. Unattributed
// damage outside a move line lands in damage_other.
var causeStats = map[protocol.Cause]model.Stat{
	protocol.CauseNone:        model.StatDamageOther,
	protocol.CauseToxic:       model.StatDamageToxic,
	protocol.CausePoison:      model.StatDamagePoison,
	protocol.CauseBurn:        model.StatDamageBurn,
	protocol.CauseItem:        model.StatDamageItem,
	protocol.CauseStealthRock: model.StatDamageStealthRock,
	protocol.CauseSpikes:      model.StatDamageSpikes,
	protocol.CauseRecoil:      model.StatDamageRecoil,
	protocol.CauseOther:       model.StatDamageOther,
}

// matchState is the per-match processing state. None of it outlives the match.
type matchState struct {
	raw     *model.RawMatch
	index   map[string]int // "p1: Garchomp" -> row
	rows    []model.CombatantMatchStats
	tracker *health.Tracker
	players map[string]model.Player // normalized key -> participant
	social  *PlayerStats
}

func combatantKey(side, name string) string { return side + ": " + name }

// ProcessMatch walks the preprocessed lines of one match once and returns
// one row per combatant in roster declaration order. Chat, join and team
// composition counts are added to ps only when the whole match succeeds.
func ProcessMatch(raw *model.RawMatch, ps *PlayerStats) ([]model.CombatantMatchStats, error) {
	if raw == nil {
		return nil, fmt.Errorf("nil RawMatch")
	}

	m := &matchState{
		raw:     raw,
		index:   make(map[string]int),
		players: make(map[string]model.Player),
		social:  NewPlayerStats(),
	}
	var keys []string
	for _, p := range raw.Players {
		m.players[p.Key] = p
		m.social.Register(p)
		m.social.Add(raw.Week, p.Key, model.PlayerMatches, 1)
		for _, c := range p.Roster {
			k := combatantKey(p.Side, c.Name)
			if _, dup := m.index[k]; dup {
				continue
			}
			m.index[k] = len(m.rows)
			keys = append(keys, k)
			m.rows = append(m.rows, model.CombatantMatchStats{
				MatchID:   raw.MatchID,
				Week:      raw.Week,
				Player:    p.Key,
				Combatant: c.Name,
				Gender:    c.Gender,
			})
			m.social.Add(raw.Week, p.Key, model.GenderStat(c.Gender), 1)
		}
	}
	m.tracker = health.New(keys)

	for i, line := range raw.Lines {
		if err := m.apply(protocol.Classify(line)); err != nil {
			return nil, fmt.Errorf("line %d %q: %w", i+1, line, err)
		}
	}

	for i := range m.rows {
		r := &m.rows[i]
		hp, _ := m.tracker.Current(combatantKey(sideOf(raw, r.Player), r.Combatant))
		r.FinalHealth = hp
		r.Fainted = hp == 0
	}
	if ps != nil {
		ps.Merge(m.social)
	}
	return m.rows, nil
}

func sideOf(raw *model.RawMatch, playerKey string) string {
	for _, p := range raw.Players {
		if p.Key == playerKey {
			return p.Side
		}
	}
	return ""
}

func (m *matchState) row(side, name string) (*model.CombatantMatchStats, error) {
	i, ok := m.index[combatantKey(side, name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnknownCombatant, side, name)
	}
	return &m.rows[i], nil
}

// change applies a health reading and returns the delta.
func (m *matchState) change(side, name string, hp protocol.Health) (int, error) {
	k := combatantKey(side, name)
	if !m.tracker.Knows(k) {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCombatant, k)
	}
	return m.tracker.Apply(k, hp.Percent, hp.Fainted), nil
}

func (m *matchState) apply(ev protocol.Event) error {
	switch ev.Kind {
	case protocol.KindSwitch:
		// Switch-ins report health the tracker may have missed (Regenerator,
		// healing wishes); resync without crediting any column.
		if ev.HasHP {
			_, err := m.change(ev.Side, ev.Subject, ev.HP)
			return err
		}

	case protocol.KindChat:
		if p, ok := m.participant(ev.Subject); ok {
			m.social.Add(m.raw.Week, p.Key, model.PlayerChatNum, 1)
			m.social.Add(m.raw.Week, p.Key, model.PlayerChatLen, utf8.RuneCountInString(ev.Text))
		}

	case protocol.KindJoin:
		if p, ok := m.participant(ev.Subject); ok {
			m.social.Add(m.raw.Week, p.Key, model.PlayerJoinNum, 1)
		}

	case protocol.KindBoost:
		r, err := m.row(ev.Side, ev.Subject)
		if err != nil {
			return err
		}
		r.Values[model.StatBoosts] += ev.Value

	case protocol.KindHeal, protocol.KindSetHP:
		r, err := m.row(ev.Side, ev.Subject)
		if err != nil {
			return err
		}
		delta, err := m.change(ev.Side, ev.Subject, ev.HP)
		if err != nil {
			return err
		}
		if delta >= 0 {
			r.Values[model.StatDamageHealed] += delta
		} else {
			r.Values[model.StatDamageOther] -= delta
		}

	case protocol.KindDamage:
		r, err := m.row(ev.Side, ev.Subject)
		if err != nil {
			return err
		}
		delta, err := m.change(ev.Side, ev.Subject, ev.HP)
		if err != nil {
			return err
		}
		r.Values[causeStats[ev.Cause]] -= delta

	case protocol.KindFaint:
		r, err := m.row(ev.Side, ev.Subject)
		if err != nil {
			return err
		}
		delta, err := m.change(ev.Side, ev.Subject, ev.HP)
		if err != nil {
			return err
		}
		r.Values[model.StatDamageOther] -= delta

	case protocol.KindMove:
		return m.applyMove(ev)
	}
	return nil
}

// applyMove credits a fused move line. A move without a damage result is a
// zero-damage event for both sides.
func (m *matchState) applyMove(ev protocol.Event) error {
	attacker, err := m.row(ev.Side, ev.Subject)
	if err != nil {
		return err
	}
	target, err := m.row(ev.TargetSide, ev.Target)
	if err != nil {
		return err
	}
	delta := 0
	if ev.Damaged {
		delta, err = m.change(ev.TargetSide, ev.Target, ev.HP)
		if err != nil {
			return err
		}
	}
	if attacker == target {
		// Self-inflicted move costs (Substitute, Belly Drum).
		attacker.Values[model.StatDamageOther] -= delta
		return nil
	}
	attacker.Values[model.StatDamageGiven] -= delta
	target.Values[model.StatDamageReceived] -= delta
	return nil
}

// participant matches a chat or join user against the match's players.
func (m *matchState) participant(user string) (model.Player, bool) {
	p, ok := m.players[parser.NormalizeName(user)]
	return p, ok
}

// Combine concatenates per-match tables. Rows are independent observations
// and are never deduplicated.
func Combine(tables ...[]model.CombatantMatchStats) []model.CombatantMatchStats {
	n := 0
	for _, t := range tables {
		n += len(t)
	}
	out := make([]model.CombatantMatchStats, 0, n)
	for _, t := range tables {
		out = append(out, t...)
	}
	return out
}
