package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-battle-stats/internal/model"
	"github.com/pable/go-battle-stats/internal/report"
	"github.com/pable/go-battle-stats/internal/storage"
)

var (
	summaryStat string
	summaryTop  int
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all matches stored in the database:
match, week, player and combatant counts, and the combatants leading one
statistic summed over every stored match.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&summaryStat, "stat", model.StatDamageGiven.String(), "statistic to rank combatants by")
	summaryCmd.Flags().IntVar(&summaryTop, "top", 10, "number of combatants to show")
}

func runSummary(cmd *cobra.Command, args []string) error {
	st, ok := statByName(summaryStat)
	if !ok {
		return fmt.Errorf("unknown stat %q (one of %v)", summaryStat, model.StatNames())
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ov, err := db.GetOverview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Matches == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'bstats parse <replay.html>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Matches stored : %d\n", ov.Matches)
	fmt.Fprintf(os.Stdout, "  Weeks          : %d\n", ov.Weeks)
	fmt.Fprintf(os.Stdout, "  Players seen   : %d\n", ov.Players)
	fmt.Fprintf(os.Stdout, "  Combatants     : %d\n", ov.Combatants)
	fmt.Fprintf(os.Stdout, "  Runs           : %d\n", ov.Runs)

	rows, err := db.AllCombatantStats()
	if err != nil {
		return fmt.Errorf("get combatant stats: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Top %d by %s ---\n\n", summaryTop, st)
	report.PrintLeaders(os.Stdout, rows, st, summaryTop)
	return nil
}

func statByName(name string) (model.Stat, bool) {
	for st := model.Stat(0); st < model.NumStats; st++ {
		if st.String() == name {
			return st, true
		}
	}
	return 0, false
}
