package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pable/go-battle-stats/internal/model"
	"github.com/pable/go-battle-stats/internal/parser"
)

const fixture = "../parser/testdata/gen9ou-2024-03-01-alice-bob.html"

func copyFixture(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLeagueJobs_WeekLabels(t *testing.T) {
	root := t.TempDir()
	copyFixture(t, filepath.Join(root, "week1"), "gen9ou-2024-03-01-alice-bob.html")
	copyFixture(t, filepath.Join(root, "week10"), "gen9ou-2024-05-10-alice-bob.html")
	writeFile(t, filepath.Join(root, "week10", "notes.md"), "ignored")
	writeFile(t, filepath.Join(root, "README"), "ignored")

	jobs, err := LeagueJobs(root)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, 1, jobs[0].Week)
	assert.Equal(t, 10, jobs[1].Week)
}

func TestLeagueJobs_NoWeeks(t *testing.T) {
	_, err := LeagueJobs(t.TempDir())
	assert.Error(t, err)
}

func TestWeekLabel(t *testing.T) {
	assert.Equal(t, 3, WeekLabel("week3", 1))
	assert.Equal(t, 12, WeekLabel("W-12", 1))
	assert.Equal(t, 2, WeekLabel("playoffs", 2))
}

func TestRun_LeagueTwoWeeks(t *testing.T) {
	root := t.TempDir()
	copyFixture(t, filepath.Join(root, "week1"), "gen9ou-2024-03-01-alice-bob.html")
	copyFixture(t, filepath.Join(root, "week2"), "gen9ou-2024-03-08-alice-bob.html")
	jobs, err := LeagueJobs(root)
	require.NoError(t, err)

	r := NewRunner(Options{Workers: 2, ContinueOnError: true, Parser: parser.DefaultOptions()}, zaptest.NewLogger(t))
	res, err := r.Run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Len(t, res.RunID, 36)
	assert.Empty(t, res.Failures)
	require.Len(t, res.Matches, 2)
	assert.Len(t, res.Combatants, 8)
	assert.Equal(t, 1, res.Combatants[0].Week)
	assert.Equal(t, 2, res.Combatants[4].Week)

	weekly := res.Players.Rows(true)
	require.Len(t, weekly, 4)
	assert.Equal(t, 14, weekly[0].Values[model.PlayerChatLen])

	total := res.Players.Rows(false)
	require.Len(t, total, 2)
	assert.Equal(t, "alice", total[0].Key)
	assert.Equal(t, 4, total[0].Values[model.PlayerChatNum])
	assert.Equal(t, 2, total[0].Values[model.PlayerMatches])
}

func TestRun_ContinuesPastBrokenFile(t *testing.T) {
	dir := t.TempDir()
	copyFixture(t, dir, "a-good.html")
	writeFile(t, filepath.Join(dir, "b-broken.log"), "|player|p1|A|\n")
	copyFixture(t, dir, "c-good.html")
	jobs, err := SessionJobs(dir)
	require.NoError(t, err)
	require.Len(t, jobs, 3)

	r := NewRunner(Options{Workers: 3, ContinueOnError: true, Parser: parser.DefaultOptions()}, zaptest.NewLogger(t))
	res, err := r.Run(context.Background(), jobs)
	require.NoError(t, err)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, filepath.Join(dir, "b-broken.log"), res.Failures[0].Path)
	assert.True(t, res.Failures[0].IsStructural())
	assert.Len(t, res.Matches, 2)
	assert.Equal(t, 2, res.Players.Get(0, "alice", model.PlayerMatches))
}

func TestRun_StopsOnErrorWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "broken.log"), "nothing here")

	jobs, err := SessionJobs(dir)
	require.NoError(t, err)
	r := NewRunner(Options{Workers: 1, Parser: parser.DefaultOptions()}, zaptest.NewLogger(t))
	_, err = r.Run(context.Background(), jobs)
	require.Error(t, err)

	var fe FileError
	require.True(t, errors.As(err, &fe))
	assert.True(t, errors.Is(err, parser.ErrStructure))
}

func TestRun_OutputIndependentOfWorkers(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.html", "b.html", "c.html", "d.html"} {
		copyFixture(t, dir, n)
	}
	jobs, err := SessionJobs(dir)
	require.NoError(t, err)

	one, err := NewRunner(Options{Workers: 1, ContinueOnError: true}, nil).Run(context.Background(), jobs)
	require.NoError(t, err)
	four, err := NewRunner(Options{Workers: 4, ContinueOnError: true}, nil).Run(context.Background(), jobs)
	require.NoError(t, err)

	assert.Equal(t, one.Combatants, four.Combatants)
	assert.Equal(t, one.Players.Rows(false), four.Players.Rows(false))
}

func TestCountMoveNotes(t *testing.T) {
	n := countMoveNotes([]string{
		"|move|p1a: A|Tackle|p2a: B\x1f|-crit|p2a: B\x1f|-supereffective|p2a: B\x1f|-damage|p2a: B|50/100",
		"|move|p1a: A|Tackle|p2a: B\x1f|-resisted|p2a: B\x1f|-damage|p2a: B|45/100",
		"|move|p1a: A|Tackle|p2a: B",
		"|-crit|p2a: B",
		"|c|☆A||-crit| is not an annotation",
	})
	assert.Equal(t, moveNotes{crits: 1, superEffective: 1, resisted: 1}, n)
}

func TestCountMoveNotes_Fixture(t *testing.T) {
	raw, err := parser.ParseFile(fixture, parser.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, moveNotes{crits: 1, superEffective: 2, resisted: 1}, countMoveNotes(raw.Lines))
}
