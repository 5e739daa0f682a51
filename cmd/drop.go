package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-battle-stats/internal/storage"
)

var (
	dropForce bool
	dropWeek  int
)

// dropCmd deletes the whole stats database, or a single week of it.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete stored matches",
	Long: `Delete the SQLite stats database. With --week only that week's matches,
combatant rows and player rows are removed, so a single league week can be
re-run without touching the rest.`,
	Example: `  bstats drop --force
  bstats drop --week 3 --force`,
	Args: cobra.NoArgs,
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().IntVar(&dropWeek, "week", 0, "only delete matches of this week")
}

func runDrop(cmd *cobra.Command, args []string) error {
	target := dbPath
	if dropWeek > 0 {
		target = fmt.Sprintf("week %d in %s", dropWeek, dbPath)
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", target)
		fmt.Fprintln(os.Stderr, "Re-run with --force to confirm.")
		return nil
	}

	if dropWeek > 0 {
		db, err := storage.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		n, err := db.DeleteWeek(dropWeek)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Deleted %d match(es) from week %d.\n", n, dropWeek)
		return nil
	}

	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}
