package storage

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/pable/go-battle-stats/internal/model"
)

var (
	statColumns   = strings.Join(model.StatNames(), ", ")
	playerColumns = strings.Join(model.PlayerStatNames(), ", ")
)

// MatchExists returns true if a match with the given id is already stored.
func (db *DB) MatchExists(matchID string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE match_id = ?", matchID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertRun records a run. Uses INSERT OR REPLACE so a run can be updated
// with its final counts.
func (db *DB) InsertRun(r model.Run) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO runs(id, started_at, mode, source, matches, failures)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ID, r.StartedAt, r.Mode, r.Source, r.Matches, r.Failures,
	)
	return err
}

// SaveMatch stores a match with its combatant and player rows in one
// transaction. Saving the same match again replaces every row, so re-running
// a batch over the same files is idempotent.
func (db *DB) SaveMatch(summary model.MatchSummary, rows []model.CombatantMatchStats, players []model.PlayerRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM combatant_match_stats WHERE match_id = ?",
		"DELETE FROM player_stats WHERE match_id = ?",
	} {
		if _, err := tx.Exec(q, summary.MatchID); err != nil {
			return fmt.Errorf("clear match %s: %w", summary.MatchID, err)
		}
	}

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO matches(match_id, source, week, player1, player2, lines, parsed_at, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.MatchID, summary.Source, summary.Week, summary.Player1, summary.Player2,
		summary.Lines, summary.ParsedAt, summary.RunID,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	if err := insertCombatantStats(tx, rows); err != nil {
		return err
	}
	if err := insertPlayerStats(tx, summary.MatchID, players); err != nil {
		return err
	}
	return tx.Commit()
}

func insertCombatantStats(tx *sql.Tx, rows []model.CombatantMatchStats) error {
	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO combatant_match_stats(
			match_id, week, player, combatant, gender,
			%s,
			final_health, fainted
		) VALUES (%s)`, statColumns, placeholders(int(model.NumStats)+7)))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range rows {
		args := []any{r.MatchID, r.Week, r.Player, r.Combatant, string(r.Gender)}
		for _, v := range r.Values {
			args = append(args, v)
		}
		args = append(args, r.FinalHealth, boolInt(r.Fainted))
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert combatant_match_stats for %s/%s: %w", r.Player, r.Combatant, err)
		}
	}
	return nil
}

func insertPlayerStats(tx *sql.Tx, matchID string, players []model.PlayerRow) error {
	stmt, err := tx.Prepare(fmt.Sprintf(`
		INSERT INTO player_stats(
			match_id, week, player, name, player_id,
			%s
		) VALUES (%s)`, playerColumns, placeholders(int(model.NumPlayerStats)+5)))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range players {
		args := []any{matchID, p.Week, p.Key, p.Name, p.ID}
		for _, v := range p.Values {
			args = append(args, v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert player_stats for %s: %w", p.Key, err)
		}
	}
	return nil
}

// DeleteWeek removes every match of the given week together with its
// combatant and player rows. It returns the number of matches removed.
func (db *DB) DeleteWeek(week int) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM combatant_match_stats WHERE match_id IN (SELECT match_id FROM matches WHERE week = ?)",
		"DELETE FROM player_stats WHERE match_id IN (SELECT match_id FROM matches WHERE week = ?)",
	} {
		if _, err := tx.Exec(q, week); err != nil {
			return 0, fmt.Errorf("delete week %d: %w", week, err)
		}
	}
	res, err := tx.Exec("DELETE FROM matches WHERE week = ?", week)
	if err != nil {
		return 0, fmt.Errorf("delete week %d: %w", week, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// ListMatches returns all stored match summaries ordered by week then source.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT m.match_id, m.source, m.week, m.player1, m.player2, m.lines, m.parsed_at, m.run_id,
			(SELECT COUNT(1) FROM combatant_match_stats c WHERE c.match_id = m.match_id)
		FROM matches m ORDER BY m.week, m.source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the first match whose id starts with the given prefix.
func (db *DB) GetMatchByPrefix(prefix string) (*model.MatchSummary, error) {
	row := db.conn.QueryRow(`
		SELECT m.match_id, m.source, m.week, m.player1, m.player2, m.lines, m.parsed_at, m.run_id,
			(SELECT COUNT(1) FROM combatant_match_stats c WHERE c.match_id = m.match_id)
		FROM matches m WHERE m.match_id LIKE ? ORDER BY m.match_id LIMIT 1`, prefix+"%")
	s, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(sc scanner) (model.MatchSummary, error) {
	var s model.MatchSummary
	err := sc.Scan(&s.MatchID, &s.Source, &s.Week, &s.Player1, &s.Player2,
		&s.Lines, &s.ParsedAt, &s.RunID, &s.Combatants)
	return s, err
}

// GetCombatantStats returns the combatant rows of one match in insertion
// order, which is roster declaration order.
func (db *DB) GetCombatantStats(matchID string) ([]model.CombatantMatchStats, error) {
	return db.queryCombatants("WHERE match_id = ? ORDER BY rowid", matchID)
}

// AllCombatantStats returns every stored combatant row ordered by week.
func (db *DB) AllCombatantStats() ([]model.CombatantMatchStats, error) {
	return db.queryCombatants("ORDER BY week, rowid")
}

func (db *DB) queryCombatants(where string, args ...any) ([]model.CombatantMatchStats, error) {
	rows, err := db.conn.Query(fmt.Sprintf(`
		SELECT match_id, week, player, combatant, gender, %s, final_health, fainted
		FROM combatant_match_stats %s`, statColumns, where), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CombatantMatchStats
	for rows.Next() {
		var r model.CombatantMatchStats
		var gender string
		var fainted int
		dest := []any{&r.MatchID, &r.Week, &r.Player, &r.Combatant, &gender}
		for i := range r.Values {
			dest = append(dest, &r.Values[i])
		}
		dest = append(dest, &r.FinalHealth, &fainted)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		r.Gender = model.Gender(gender)
		r.Fainted = fainted != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// PlayerTotals sums the stored player statistics per player, or per player
// per week when byWeek is set, ordered by week then player key.
func (db *DB) PlayerTotals(byWeek bool) ([]model.PlayerRow, error) {
	week := "0"
	group := "player"
	if byWeek {
		week = "week"
		group = "week, player"
	}
	sums := make([]string, model.NumPlayerStats)
	for i, c := range model.PlayerStatNames() {
		sums[i] = "SUM(" + c + ")"
	}
	rows, err := db.conn.Query(fmt.Sprintf(`
		SELECT %s, player, MIN(name), MIN(player_id), %s
		FROM player_stats GROUP BY %s ORDER BY %s`,
		week, strings.Join(sums, ", "), group, group))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayerRow
	for rows.Next() {
		var r model.PlayerRow
		dest := []any{&r.Week, &r.Key, &r.Name, &r.ID}
		for i := range r.Values {
			dest = append(dest, &r.Values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Overview holds whole-database counts for the summary command.
type Overview struct {
	Matches    int
	Weeks      int
	Players    int
	Combatants int
	Runs       int
}

// GetOverview returns whole-database counts.
func (db *DB) GetOverview() (Overview, error) {
	var ov Overview
	err := db.conn.QueryRow(`
		SELECT
			(SELECT COUNT(1) FROM matches),
			(SELECT COUNT(DISTINCT week) FROM matches),
			(SELECT COUNT(DISTINCT player) FROM player_stats),
			(SELECT COUNT(DISTINCT player || '/' || combatant) FROM combatant_match_stats),
			(SELECT COUNT(1) FROM runs)`).Scan(&ov.Matches, &ov.Weeks, &ov.Players, &ov.Combatants, &ov.Runs)
	return ov, err
}

// ListRuns returns recorded runs, newest first.
func (db *DB) ListRuns() ([]model.Run, error) {
	rows, err := db.conn.Query(`
		SELECT id, started_at, mode, source, matches, failures FROM runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Run
	for rows.Next() {
		var r model.Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Mode, &r.Source, &r.Matches, &r.Failures); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// QueryRaw runs an arbitrary query and returns every value rendered as text.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch v := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(v)
			default:
				row[i] = fmt.Sprint(v)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
