package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pable/go-battle-stats/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err, "open in-memory db")
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleMatch(id string, week int) (model.MatchSummary, []model.CombatantMatchStats, []model.PlayerRow) {
	summary := model.MatchSummary{
		MatchID: id, Source: "week/" + id + ".html", Week: week,
		Player1: "Alice", Player2: "Bob", Lines: 40, ParsedAt: "2024-03-01T00:00:00Z", RunID: "run-1",
	}
	var garchomp, heatran model.CombatantMatchStats
	garchomp = model.CombatantMatchStats{MatchID: id, Week: week, Player: "alice", Combatant: "Garchomp", Gender: model.GenderFemale, FinalHealth: 0, Fainted: true}
	garchomp.Values[model.StatDamageGiven] = 148
	garchomp.Values[model.StatDamageItem] = 16
	heatran = model.CombatantMatchStats{MatchID: id, Week: week, Player: "bob", Combatant: "Heatran", Gender: model.GenderMale, FinalHealth: 18}
	heatran.Values[model.StatDamageBurn] = 12
	heatran.Values[model.StatBoosts] = -1

	alice := model.PlayerRow{Week: week, Key: "alice", Name: "Alice", ID: "alice"}
	alice.Values[model.PlayerChatNum] = 2
	alice.Values[model.PlayerChatLen] = 14
	alice.Values[model.PlayerMatches] = 1
	bob := model.PlayerRow{Week: week, Key: "bob", Name: "Bob", ID: "bob"}
	bob.Values[model.PlayerMatches] = 1
	return summary, []model.CombatantMatchStats{garchomp, heatran}, []model.PlayerRow{alice, bob}
}

func saveSample(t *testing.T, db *DB, id string, week int) {
	t.Helper()
	require.NoError(t, db.SaveMatch(sampleMatch(id, week)), "SaveMatch %s", id)
}

func TestSaveMatchAndExists(t *testing.T) {
	db := openMemDB(t)
	saveSample(t, db, "abc123", 1)

	exists, err := db.MatchExists("abc123")
	require.NoError(t, err)
	assert.True(t, exists, "expected match to exist after insert")

	exists, err = db.MatchExists("nonexistent")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCombatantStatsRoundTrip(t *testing.T) {
	db := openMemDB(t)
	saveSample(t, db, "h1", 2)

	got, err := db.GetCombatantStats("h1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "Garchomp", got[0].Combatant, "rows follow roster order")
	assert.Equal(t, "Heatran", got[1].Combatant)
	assert.Equal(t, 148, got[0].Values[model.StatDamageGiven])
	assert.Equal(t, 16, got[0].Values[model.StatDamageItem])
	assert.True(t, got[0].Fainted)
	assert.Equal(t, model.GenderFemale, got[0].Gender)
	assert.Equal(t, -1, got[1].Values[model.StatBoosts])
	assert.Equal(t, 18, got[1].FinalHealth)
	assert.Equal(t, 2, got[1].Week)
}

func TestSaveMatchIdempotent(t *testing.T) {
	db := openMemDB(t)
	saveSample(t, db, "idem1", 1)
	saveSample(t, db, "idem1", 1)

	got, err := db.GetCombatantStats("idem1")
	require.NoError(t, err)
	assert.Len(t, got, 2, "re-save must replace rows")

	totals, err := db.PlayerTotals(false)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, 2, totals[0].Values[model.PlayerChatNum], "player totals double counted")
}

func TestListMatchesAndPrefix(t *testing.T) {
	db := openMemDB(t)
	saveSample(t, db, "deadbeef1234", 2)
	saveSample(t, db, "cafe5678", 1)

	list, err := db.ListMatches()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "cafe5678", list[0].MatchID, "week 1 first")
	assert.Equal(t, 2, list[0].Combatants)

	s, err := db.GetMatchByPrefix("deadb")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "deadbeef1234", s.MatchID)

	s, err = db.GetMatchByPrefix("ffffffff")
	require.NoError(t, err)
	assert.Nil(t, s, "unknown prefix")
}

func TestPlayerTotalsByWeek(t *testing.T) {
	db := openMemDB(t)
	saveSample(t, db, "w1", 1)
	saveSample(t, db, "w2", 2)

	weekly, err := db.PlayerTotals(true)
	require.NoError(t, err)
	require.Len(t, weekly, 4)
	assert.Equal(t, 1, weekly[0].Week)
	assert.Equal(t, "alice", weekly[0].Key)
	assert.Equal(t, 2, weekly[2].Week)

	total, err := db.PlayerTotals(false)
	require.NoError(t, err)
	require.Len(t, total, 2)
	alice := total[0]
	assert.Equal(t, "Alice", alice.Name)
	assert.Equal(t, 28, alice.Values[model.PlayerChatLen])
	assert.Equal(t, 2, alice.Values[model.PlayerMatches])
}

func TestRunsAndQueryRaw(t *testing.T) {
	db := openMemDB(t)
	run := model.Run{ID: "run-1", StartedAt: "2024-03-01T00:00:00Z", Mode: "league", Source: "league/"}
	require.NoError(t, db.InsertRun(run))
	run.Matches, run.Failures = 3, 1
	require.NoError(t, db.InsertRun(run), "InsertRun update")

	runs, err := db.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 3, runs[0].Matches)
	assert.Equal(t, 1, runs[0].Failures)

	cols, rows, err := db.QueryRaw("SELECT id, matches, NULL AS note FROM runs")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "matches", "note"}, cols)
	assert.Equal(t, [][]string{{"run-1", "3", "NULL"}}, rows)
}

func TestOverviewAndAllCombatants(t *testing.T) {
	db := openMemDB(t)
	saveSample(t, db, "w1", 1)
	saveSample(t, db, "w2", 2)

	ov, err := db.GetOverview()
	require.NoError(t, err)
	assert.Equal(t, Overview{Matches: 2, Weeks: 2, Players: 2, Combatants: 2, Runs: 0}, ov)

	all, err := db.AllCombatantStats()
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, 1, all[0].Week)
	assert.Equal(t, 2, all[3].Week)
}

func TestDeleteWeek(t *testing.T) {
	db := openMemDB(t)
	saveSample(t, db, "w1", 1)
	saveSample(t, db, "w2", 2)

	n, err := db.DeleteWeek(1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	exists, err := db.MatchExists("w1")
	require.NoError(t, err)
	assert.False(t, exists, "week 1 match should be gone")

	all, err := db.AllCombatantStats()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "w2", all[0].MatchID)

	players, err := db.PlayerTotals(true)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, 2, players[0].Week)

	n, err = db.DeleteWeek(7)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
