// Package store persists terminal screening decisions to a local SQLite
// database. It implements the orchestrator's event sink; recording is fire
// and forget, so a write failure is logged and never fails the run.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/candidate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	candidate_id TEXT NOT NULL,
	candidate_name TEXT NOT NULL DEFAULT '',
	action      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	score       INTEGER,
	passed      INTEGER,
	highlights  TEXT NOT NULL DEFAULT '',
	concerns    TEXT NOT NULL DEFAULT '',
	fail_open   INTEGER NOT NULL DEFAULT 0,
	decided_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decisions_candidate ON decisions (candidate_id);
CREATE INDEX IF NOT EXISTS idx_decisions_action ON decisions (action);
`

// Store is a SQLite-backed decision log.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens or creates the decision database at path. ":memory:" works for
// tests.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening decision db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one decision. Errors are logged, not returned; the
// screening run never depends on the log's durability.
func (s *Store) Record(d candidate.Decision) {
	var (
		score    sql.NullInt64
		passed   sql.NullInt64
		failOpen int
		high     string
		conc     string
	)
	if d.Evaluation != nil {
		score = sql.NullInt64{Int64: int64(d.Evaluation.Score), Valid: true}
		passed = sql.NullInt64{Int64: boolInt(d.Evaluation.Passed), Valid: true}
		if d.Evaluation.FailOpen {
			failOpen = 1
		}
		high = strings.Join(d.Evaluation.Highlights, "\n")
		conc = strings.Join(d.Evaluation.Concerns, "\n")
	}

	_, err := s.db.Exec(`
		INSERT INTO decisions
			(candidate_id, candidate_name, action, reason, score, passed, highlights, concerns, fail_open, decided_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.CandidateID, d.CandidateName, string(d.Action), d.Reason,
		score, passed, high, conc, failOpen, d.Timestamp,
	)
	if err != nil {
		s.logger.Warn("recording decision failed",
			zap.String("candidate_id", d.CandidateID),
			zap.Error(err),
		)
	}
}

// Summary aggregates decisions per action.
type Summary struct {
	Greeted  int
	Skipped  int
	FailOpen int
}

// Summarize reports the counts for decisions recorded since the given time.
// A zero time covers the whole log.
func (s *Store) Summarize(since time.Time) (Summary, error) {
	rows, err := s.db.Query(`
		SELECT action, COUNT(*), COALESCE(SUM(fail_open), 0)
		FROM decisions
		WHERE decided_at >= ?
		GROUP BY action`, since)
	if err != nil {
		return Summary{}, fmt.Errorf("summarizing decisions: %w", err)
	}
	defer rows.Close()

	var sum Summary
	for rows.Next() {
		var (
			action   string
			count    int
			failOpen int
		)
		if err := rows.Scan(&action, &count, &failOpen); err != nil {
			return Summary{}, fmt.Errorf("scanning summary row: %w", err)
		}
		switch candidate.Action(action) {
		case candidate.ActionGreet:
			sum.Greeted = count
		case candidate.ActionSkip:
			sum.Skipped = count
		}
		sum.FailOpen += failOpen
	}
	return sum, rows.Err()
}

// Recent returns the newest decisions, most recent first.
func (s *Store) Recent(limit int) ([]candidate.Decision, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT candidate_id, candidate_name, action, reason, score, passed, highlights, concerns, fail_open, decided_at
		FROM decisions
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing decisions: %w", err)
	}
	defer rows.Close()

	var out []candidate.Decision
	for rows.Next() {
		var (
			d        candidate.Decision
			action   string
			score    sql.NullInt64
			passed   sql.NullInt64
			high     string
			conc     string
			failOpen int
		)
		if err := rows.Scan(&d.CandidateID, &d.CandidateName, &action, &d.Reason,
			&score, &passed, &high, &conc, &failOpen, &d.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning decision row: %w", err)
		}
		d.Action = candidate.Action(action)
		if score.Valid {
			d.Evaluation = &candidate.EvaluationResult{
				Score:    int(score.Int64),
				Passed:   passed.Int64 != 0,
				Reason:   d.Reason,
				FailOpen: failOpen != 0,
			}
			if high != "" {
				d.Evaluation.Highlights = strings.Split(high, "\n")
			}
			if conc != "" {
				d.Evaluation.Concerns = strings.Split(conc, "\n")
			}
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
