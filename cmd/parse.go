package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pable/go-battle-stats/internal/batch"
)

var (
	parseFocus   string
	parseNoStore bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <replay.html>...",
	Short: "Parse one or more battle replays and print their statistics",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().StringVar(&parseFocus, "player", "", "highlight a player's combatants (normalized name)")
	parseCmd.Flags().BoolVar(&parseNoStore, "no-store", false, "do not write results to the database")
}

func runParse(cmd *cobra.Command, args []string) error {
	jobs := make([]batch.Job, len(args))
	for i, a := range args {
		jobs[i] = batch.Job{Path: a}
	}
	return runJobs(cmd.Context(), jobs, runOptions{
		mode:    "parse",
		source:  args[0],
		noStore: parseNoStore,
		focus:   parseFocus,
	})
}
