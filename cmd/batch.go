package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pable/go-battle-stats/internal/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Process every match file in a session directory",
	Long: `Process every .html, .log and .txt match file directly inside <dir>.
Files are processed in parallel; a malformed file is reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var leagueCmd = &cobra.Command{
	Use:   "league <dir>",
	Short: "Process a league: one sub-directory per week",
	Long: `Process every week directory inside <dir> in listing order. The week
label is the trailing number of the directory name ("week3" is week 3).
Player statistics are reported per week.`,
	Args: cobra.ExactArgs(1),
	RunE: runLeague,
}

func init() {
	addBatchFlags(batchCmd)
	addBatchFlags(leagueCmd)
}

func addBatchFlags(c *cobra.Command) {
	c.Flags().Int("workers", 4, "number of files processed in parallel")
	c.Flags().Bool("fail-fast", false, "stop at the first failing file")
	c.Flags().Bool("no-store", false, "do not write results to the database")
	c.Flags().Bool("quiet", false, "print only the player table")
	c.Flags().String("player", "", "highlight a player's combatants (normalized name)")
}

// bindBatchFlags points the batch.* config keys at the running command's
// flags. Both batch and league define them, so binding happens once the
// command is known.
func bindBatchFlags(cmd *cobra.Command) error {
	if err := v.BindPFlag("batch.workers", cmd.Flags().Lookup("workers")); err != nil {
		return fmt.Errorf("bind --workers: %w", err)
	}
	if ff, _ := cmd.Flags().GetBool("fail-fast"); ff {
		v.Set("batch.continue_on_error", false)
	}
	return nil
}

func batchRunOptions(cmd *cobra.Command, mode, source string) runOptions {
	noStore, _ := cmd.Flags().GetBool("no-store")
	quiet, _ := cmd.Flags().GetBool("quiet")
	focus, _ := cmd.Flags().GetString("player")
	return runOptions{
		mode:    mode,
		source:  source,
		noStore: noStore,
		quiet:   quiet,
		focus:   focus,
		byWeek:  mode == "league",
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	jobs, err := batch.SessionJobs(args[0])
	if err != nil {
		return err
	}
	return runJobs(cmd.Context(), jobs, batchRunOptions(cmd, "batch", args[0]))
}

func runLeague(cmd *cobra.Command, args []string) error {
	jobs, err := batch.LeagueJobs(args[0])
	if err != nil {
		return err
	}
	return runJobs(cmd.Context(), jobs, batchRunOptions(cmd, "league", args[0]))
}
