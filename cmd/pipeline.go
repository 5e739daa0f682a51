package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/pable/go-battle-stats/internal/batch"
	"github.com/pable/go-battle-stats/internal/model"
	"github.com/pable/go-battle-stats/internal/report"
	"github.com/pable/go-battle-stats/internal/storage"
)

var (
	cOK   = color.New(color.FgGreen, color.Bold)
	cFail = color.New(color.FgRed, color.Bold)
	cWarn = color.New(color.FgYellow)
)

// runOptions are the per-command switches shared by parse, batch and league.
type runOptions struct {
	mode    string // parse, batch or league
	source  string
	noStore bool
	byWeek  bool
	focus   string // player key to highlight
	quiet   bool   // skip per-match tables
}

// runJobs processes jobs, stores the results, writes CSV output and prints
// the tables. Per-file failures are reported, not returned.
func runJobs(ctx context.Context, jobs []batch.Job, o runOptions) error {
	if len(jobs) == 0 {
		cWarn.Fprintf(os.Stderr, "No match files found in %s\n", o.source)
		return nil
	}
	r := batch.NewRunner(batch.Options{
		Workers:         cfg.Batch.Workers,
		ContinueOnError: cfg.Batch.ContinueOnError,
		Parser:          parserOptions(),
	}, logger)
	res, err := r.Run(ctx, jobs)
	if err != nil {
		return err
	}

	if !o.noStore {
		if err := store(res, o); err != nil {
			return err
		}
	}

	players := res.Players.Rows(o.byWeek)
	if cfg.Output.Dir != "" {
		if err := report.WriteCSVFiles(cfg.Output.Dir, res.Combatants, players); err != nil {
			return err
		}
		logger.Info("csv written", zap.String("dir", cfg.Output.Dir))
	}

	if !o.quiet {
		for _, m := range res.Matches {
			report.PrintMatchSummary(os.Stdout, m.Raw.Summary(res.RunID, ""))
			report.PrintCombatantTable(os.Stdout, m.Rows, o.focus)
		}
	}
	fmt.Fprintf(os.Stdout, "\n--- Players ---\n\n")
	report.PrintPlayerTable(os.Stdout, players, o.byWeek)

	printFailures(res)
	return nil
}

func store(res *batch.Result, o runOptions) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	parsedAt := time.Now().UTC().Format(time.RFC3339)
	for _, m := range res.Matches {
		summary := m.Raw.Summary(res.RunID, parsedAt)
		if err := db.SaveMatch(summary, m.Rows, m.Players.Rows(true)); err != nil {
			return fmt.Errorf("save match %s: %w", m.Raw.Source, err)
		}
	}
	return db.InsertRun(model.Run{
		ID:        res.RunID,
		StartedAt: res.StartedAt.Format(time.RFC3339),
		Mode:      o.mode,
		Source:    o.source,
		Matches:   len(res.Matches),
		Failures:  len(res.Failures),
	})
}

func printFailures(res *batch.Result) {
	fmt.Fprintln(os.Stdout)
	if len(res.Failures) == 0 {
		cOK.Fprintf(os.Stdout, "%d matches processed\n", len(res.Matches))
		return
	}
	cWarn.Fprintf(os.Stdout, "%d matches processed, %d skipped:\n", len(res.Matches), len(res.Failures))
	for _, f := range res.Failures {
		kind := "error"
		if f.IsStructural() {
			kind = "malformed"
		}
		cFail.Fprintf(os.Stdout, "  %-9s ", kind)
		fmt.Fprintln(os.Stdout, f.Error())
	}
}
