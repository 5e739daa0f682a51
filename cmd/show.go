package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-battle-stats/internal/report"
	"github.com/pable/go-battle-stats/internal/storage"
)

var showFocus string

var showCmd = &cobra.Command{
	Use:   "show <match-prefix>",
	Short: "Show stored combatant stats by match id prefix",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().StringVar(&showFocus, "player", "", "highlight a player's combatants (normalized name)")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()
	return showMatch(db, args[0], showFocus)
}

func showMatch(db *storage.DB, prefix, focus string) error {
	m, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if m == nil {
		fmt.Fprintf(os.Stderr, "No match found with id prefix %q\n", prefix)
		return nil
	}
	rows, err := db.GetCombatantStats(m.MatchID)
	if err != nil {
		return fmt.Errorf("get combatant stats: %w", err)
	}
	report.PrintMatchSummary(os.Stdout, *m)
	report.PrintCombatantTable(os.Stdout, rows, focus)
	return nil
}
