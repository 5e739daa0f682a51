// Package batch runs the parse and accumulate pipeline over many match files,
// either a flat session directory or a league tree of week directories.
package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-battle-stats/internal/aggregator"
	"github.com/pable/go-battle-stats/internal/model"
	"github.com/pable/go-battle-stats/internal/parser"
)

// Job is one match file and the week it belongs to (0 outside league mode).
type Job struct {
	Path string
	Week int
}

// FileError records a match that was skipped.
type FileError struct {
	Path string
	Week int
	Err  error
}

func (e FileError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }

func (e FileError) Unwrap() error { return e.Err }

// IsStructural reports whether a failure came from a malformed log rather
// than an I/O or reference error.
func (e FileError) IsStructural() bool { return errors.Is(e.Err, parser.ErrStructure) }

// Match is one successfully processed file.
type Match struct {
	Raw     *model.RawMatch
	Rows    []model.CombatantMatchStats
	Players *aggregator.PlayerStats // this match's contribution only
}

// Result is the outcome of a run. Matches and Combatants follow input order.
type Result struct {
	RunID      string
	StartedAt  time.Time
	Matches    []Match
	Combatants []model.CombatantMatchStats
	Players    *aggregator.PlayerStats
	Failures   []FileError
}

type Options struct {
	Workers         int
	ContinueOnError bool
	Parser          parser.Options
}

// Runner processes jobs with a bounded worker pool.
type Runner struct {
	opts Options
	log  *zap.Logger
}

func NewRunner(opts Options, log *zap.Logger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{opts: opts, log: log}
}

// outcome is a worker's private result for one job.
type outcome struct {
	match Match
	err   error
}

// Run parses and accumulates every job. Each job accumulates player
// statistics into its own PlayerStats; they are merged in input order once
// all workers finish, so the output does not depend on scheduling.
//
// With ContinueOnError a failing file is recorded in Result.Failures and the
// run goes on; otherwise the first failure cancels the run and is returned.
func (r *Runner) Run(ctx context.Context, jobs []Job) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Players:   aggregator.NewPlayerStats(),
	}
	log := r.log.With(zap.String("run", res.RunID))
	log.Info("run started", zap.Int("files", len(jobs)), zap.Int("workers", r.opts.Workers))

	outcomes := make([]outcome, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out := r.process(job)
			outcomes[i] = out
			if out.err != nil {
				log.Warn("skipping match",
					zap.String("file", job.Path),
					zap.Int("week", job.Week),
					zap.Error(out.err))
				if !r.opts.ContinueOnError {
					return FileError{Path: job.Path, Week: job.Week, Err: out.err}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var tables [][]model.CombatantMatchStats
	for i, out := range outcomes {
		if out.err != nil {
			res.Failures = append(res.Failures, FileError{Path: jobs[i].Path, Week: jobs[i].Week, Err: out.err})
			continue
		}
		res.Matches = append(res.Matches, out.match)
		res.Players.Merge(out.match.Players)
		tables = append(tables, out.match.Rows)
	}
	res.Combatants = aggregator.Combine(tables...)

	log.Info("run finished",
		zap.Int("matches", len(res.Matches)),
		zap.Int("failures", len(res.Failures)),
		zap.Int("players", res.Players.Len()),
		zap.Duration("elapsed", time.Since(res.StartedAt)))
	return res, nil
}

func (r *Runner) process(job Job) outcome {
	opts := r.opts.Parser
	opts.Week = job.Week
	raw, err := parser.ParseFile(job.Path, opts)
	if err != nil {
		return outcome{err: err}
	}
	ps := aggregator.NewPlayerStats()
	rows, err := aggregator.ProcessMatch(raw, ps)
	if err != nil {
		return outcome{err: err}
	}
	notes := countMoveNotes(raw.Lines)
	r.log.Debug("match processed",
		zap.String("file", job.Path),
		zap.Int("week", job.Week),
		zap.String("match", raw.MatchID[:12]),
		zap.String("p1", raw.Players[0].Name),
		zap.String("p2", raw.Players[1].Name),
		zap.Int("lines", len(raw.Lines)),
		zap.Int("aliases", len(raw.Aliases)),
		zap.Int("crits", notes.crits),
		zap.Int("super_effective", notes.superEffective),
		zap.Int("resisted", notes.resisted))
	return outcome{match: Match{Raw: raw, Rows: rows, Players: ps}}
}
