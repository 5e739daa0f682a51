package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pable/go-battle-stats/internal/model"
)

const (
	CombatantsFile = "combatants.csv"
	PlayersFile    = "players.csv"
)

// WriteCombatantsCSV writes the combatant/match table with a header row.
// Stat columns follow model.StatNames order.
func WriteCombatantsCSV(w io.Writer, rows []model.CombatantMatchStats) error {
	cw := csv.NewWriter(w)
	header := append([]string{"match_id", "week", "player", "combatant", "gender"}, model.StatNames()...)
	header = append(header, "final_health", "fainted")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.MatchID, strconv.Itoa(r.Week), r.Player, r.Combatant, string(r.Gender)}
		for _, v := range r.Values {
			rec = append(rec, strconv.Itoa(v))
		}
		rec = append(rec, strconv.Itoa(r.FinalHealth), strconv.FormatBool(r.Fainted))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePlayersCSV writes the player table. avg_chat_len is NaN for players
// who never chatted.
func WritePlayersCSV(w io.Writer, rows []model.PlayerRow) error {
	cw := csv.NewWriter(w)
	header := append([]string{"week", "player", "name", "id"}, model.PlayerStatNames()...)
	header = append(header, "avg_chat_len")
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{strconv.Itoa(r.Week), r.Key, r.Name, r.ID}
		for _, v := range r.Values {
			rec = append(rec, strconv.Itoa(v))
		}
		rec = append(rec, formatAvg(r.AvgChatLen(), "NaN"))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFiles writes combatants.csv and players.csv into dir, creating it
// if needed.
func WriteCSVFiles(dir string, combatants []model.CombatantMatchStats, players []model.PlayerRow) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeFile(filepath.Join(dir, CombatantsFile), func(w io.Writer) error {
		return WriteCombatantsCSV(w, combatants)
	}); err != nil {
		return err
	}
	return writeFile(filepath.Join(dir, PlayersFile), func(w io.Writer) error {
		return WritePlayersCSV(w, players)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
