package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-battle-stats/internal/report"
	"github.com/pable/go-battle-stats/internal/storage"
)

var playersByWeek bool

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "Show stored per-player chat and team composition totals",
	Args:  cobra.NoArgs,
	RunE:  runPlayers,
}

func init() {
	playersCmd.Flags().BoolVar(&playersByWeek, "weekly", false, "one row per player per week")
}

func runPlayers(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	rows, err := db.PlayerTotals(playersByWeek)
	if err != nil {
		return fmt.Errorf("player totals: %w", err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "No players stored yet.")
		return nil
	}
	report.PrintPlayerTable(os.Stdout, rows, playersByWeek)
	return nil
}
