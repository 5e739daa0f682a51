package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-battle-stats/internal/model"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintMatchSummary prints a one-line summary header for the match.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	week := ""
	if s.Week > 0 {
		week = fmt.Sprintf("Week: %d  |  ", s.Week)
	}
	fmt.Fprintf(w, "\n%s%s vs %s  |  Lines: %d  |  Source: %s  |  Match: %s\n\n",
		week, s.Player1, s.Player2, s.Lines, s.Source, shortID(s.MatchID))
}

// PrintCombatantTable prints one row per combatant. If focus is a player key,
// that player's rows are marked with ">".
func PrintCombatantTable(w io.Writer, rows []model.CombatantMatchStats, focus string) {
	table := newTable(w)

	header := []any{" ", "PLAYER", "COMBATANT", "G"}
	for _, n := range model.StatNames() {
		header = append(header, columnLabel(n))
	}
	header = append(header, "HP")
	table.Header(header...)

	for _, r := range rows {
		marker := " "
		if focus != "" && r.Player == focus {
			marker = ">"
		}
		cells := []any{marker, r.Player, r.Combatant, string(r.Gender)}
		for _, v := range r.Values {
			cells = append(cells, strconv.Itoa(v))
		}
		hp := strconv.Itoa(r.FinalHealth)
		if r.Fainted {
			hp = "fnt"
		}
		cells = append(cells, hp)
		table.Append(cells...)
	}
	table.Render()
}

// PrintPlayerTable prints the player table. AVG_CHAT shows a dash for players who
// never chatted.
func PrintPlayerTable(w io.Writer, rows []model.PlayerRow, byWeek bool) {
	table := newTable(w)

	header := []any{}
	if byWeek {
		header = append(header, "WEEK")
	}
	header = append(header, "PLAYER", "ID")
	for _, n := range model.PlayerStatNames() {
		header = append(header, columnLabel(n))
	}
	header = append(header, "AVG_CHAT")
	table.Header(header...)

	for _, r := range rows {
		cells := []any{}
		if byWeek {
			cells = append(cells, strconv.Itoa(r.Week))
		}
		name := r.Name
		if name == "" {
			name = r.Key
		}
		cells = append(cells, name, r.ID)
		for _, v := range r.Values {
			cells = append(cells, strconv.Itoa(v))
		}
		cells = append(cells, formatAvg(r.AvgChatLen(), "—"))
		table.Append(cells...)
	}
	table.Render()
}

// PrintLeaders prints the top n combatants by stat summed over rows.
func PrintLeaders(w io.Writer, rows []model.CombatantMatchStats, st model.Stat, n int) {
	type total struct {
		player, combatant string
		value, matches    int
	}
	byKey := map[string]*total{}
	var order []string
	for _, r := range rows {
		k := r.Player + "/" + r.Combatant
		t := byKey[k]
		if t == nil {
			t = &total{player: r.Player, combatant: r.Combatant}
			byKey[k] = t
			order = append(order, k)
		}
		t.value += r.Values[st]
		t.matches++
	}
	sort.SliceStable(order, func(i, j int) bool { return byKey[order[i]].value > byKey[order[j]].value })
	if n > 0 && len(order) > n {
		order = order[:n]
	}

	table := newTable(w)
	table.Header("#", "PLAYER", "COMBATANT", columnLabel(st.String()), "MATCHES")
	for i, k := range order {
		t := byKey[k]
		table.Append(strconv.Itoa(i+1), t.player, t.combatant, strconv.Itoa(t.value), strconv.Itoa(t.matches))
	}
	table.Render()
}

// PrintMatchList prints stored matches, one per line.
func PrintMatchList(w io.Writer, matches []model.MatchSummary) {
	table := newTable(w)
	table.Header("MATCH", "WEEK", "PLAYER 1", "PLAYER 2", "COMBATANTS", "LINES", "SOURCE")
	for _, m := range matches {
		table.Append(shortID(m.MatchID), strconv.Itoa(m.Week), m.Player1, m.Player2,
			strconv.Itoa(m.Combatants), strconv.Itoa(m.Lines), m.Source)
	}
	table.Render()
}

// columnLabel turns "damage_stealth_rock" into "STEALTH_ROCK".
func columnLabel(name string) string {
	return strings.ToUpper(strings.TrimPrefix(name, "damage_"))
}

func formatAvg(v float64, nan string) string {
	if math.IsNaN(v) {
		return nan
	}
	return fmt.Sprintf("%.2f", v)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
