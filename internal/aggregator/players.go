package aggregator

import (
	"sort"

	"github.com/pable/go-battle-stats/internal/model"
)

type playerWeek struct {
	week int
	key  string
}

// PlayerStats accumulates per-player categories indexed by week, player and
// category. It also serves as the player registry of a run: the first
// registration of a normalized key fixes its display name and id.
//
// A PlayerStats is not safe for concurrent use. Parallel workers each own one
// and reduce with Merge.
type PlayerStats struct {
	values  map[playerWeek]*[model.NumPlayerStats]int
	players map[string]model.Player
	order   []string // registration order
}

func NewPlayerStats() *PlayerStats {
	return &PlayerStats{
		values:  make(map[playerWeek]*[model.NumPlayerStats]int),
		players: make(map[string]model.Player),
	}
}

// Register adds p to the registry if its key is new and returns its index.
func (s *PlayerStats) Register(p model.Player) int {
	if _, ok := s.players[p.Key]; !ok {
		s.players[p.Key] = model.Player{ID: p.ID, Name: p.Name, Key: p.Key}
		s.order = append(s.order, p.Key)
	}
	return s.Index(p.Key)
}

// Index returns the registration index of key, or -1.
func (s *PlayerStats) Index(key string) int {
	for i, k := range s.order {
		if k == key {
			return i
		}
	}
	return -1
}

// Player returns the registered display name and id for key.
func (s *PlayerStats) Player(key string) (model.Player, bool) {
	p, ok := s.players[key]
	return p, ok
}

func (s *PlayerStats) Len() int { return len(s.order) }

func (s *PlayerStats) Add(week int, key string, st model.PlayerStat, n int) {
	k := playerWeek{week, key}
	v := s.values[k]
	if v == nil {
		v = new([model.NumPlayerStats]int)
		s.values[k] = v
	}
	v[st] += n
}

func (s *PlayerStats) Get(week int, key string, st model.PlayerStat) int {
	if v := s.values[playerWeek{week, key}]; v != nil {
		return v[st]
	}
	return 0
}

// Merge adds every count of o into s. Players o registered first that s has
// not seen are appended in o's order.
func (s *PlayerStats) Merge(o *PlayerStats) {
	for _, k := range o.order {
		s.Register(o.players[k])
	}
	for k, v := range o.values {
		for st := model.PlayerStat(0); st < model.NumPlayerStats; st++ {
			if v[st] != 0 {
				s.Add(k.week, k.key, st, v[st])
			}
		}
	}
}

// Rows returns one row per player, or per player per week when byWeek is
// set, sorted by week then key.
func (s *PlayerStats) Rows(byWeek bool) []model.PlayerRow {
	merged := make(map[playerWeek]*model.PlayerRow)
	for k, v := range s.values {
		if !byWeek {
			k.week = 0
		}
		row := merged[k]
		if row == nil {
			p := s.players[k.key]
			row = &model.PlayerRow{Week: k.week, Key: k.key, Name: p.Name, ID: p.ID}
			merged[k] = row
		}
		for st := range v {
			row.Values[st] += v[st]
		}
	}
	out := make([]model.PlayerRow, 0, len(merged))
	for _, r := range merged {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		return out[i].Key < out[j].Key
	})
	return out
}
