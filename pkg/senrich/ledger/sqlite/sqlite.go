package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/senrich/pkg/senrich/internalerr"
	"github.com/cognicore/senrich/pkg/senrich/ledger"
)

const timeFormat = time.RFC3339Nano

// sqliteLedger implements ledger.Recorder using SQLite
type sqliteLedger struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) a ledger database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (ledger.Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, internalerr.IOf(err, "open ledger %s", path)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, internalerr.IOf(err, "open ledger %s", path)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, internalerr.IOf(err, "open ledger %s", path)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, internalerr.IOf(err, "init ledger schema")
	}

	return &sqliteLedger{db: db, now: time.Now}, nil
}

// Close closes the database connection
func (s *sqliteLedger) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	tool TEXT NOT NULL,
	language TEXT NOT NULL,
	ignore_case INTEGER NOT NULL DEFAULT 0,
	input TEXT NOT NULL,
	output TEXT NOT NULL,
	state TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	error TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS run_states (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	state TEXT NOT NULL,
	at TEXT NOT NULL,
	PRIMARY KEY(run_id, seq),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS artifacts (
	run_id TEXT NOT NULL,
	stage TEXT NOT NULL,
	input_path TEXT NOT NULL,
	output_path TEXT NOT NULL,
	secondary_path TEXT NOT NULL DEFAULT '',
	paragraphs INTEGER NOT NULL DEFAULT 0,
	sentences INTEGER NOT NULL DEFAULT 0,
	requests INTEGER NOT NULL DEFAULT 0,
	wait_seconds INTEGER NOT NULL DEFAULT 0,
	elapsed_ms INTEGER NOT NULL DEFAULT 0,
	UNIQUE(run_id, stage, input_path),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id, stage);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

func (s *sqliteLedger) CreateRun(ctx context.Context, run ledger.Run) error {
	if run.ID == "" {
		return fmt.Errorf("ledger: run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = s.now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs(id, tool, language, ignore_case, input, output, state, started_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Tool, run.Language, boolToInt(run.IgnoreCase), run.Input, run.Output,
		run.State, run.StartedAt.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("insert run %s: %w", run.ID, err)
	}
	if err := appendState(ctx, tx, run.ID, run.State, run.StartedAt); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteLedger) SetState(ctx context.Context, runID, state string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := updateState(ctx, tx, runID, state); err != nil {
		return err
	}
	if err := appendState(ctx, tx, runID, state, s.now()); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteLedger) FinishRun(ctx context.Context, runID, state string, runErr error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	now := s.now()
	res, err := tx.ExecContext(ctx,
		"UPDATE runs SET state = ?, finished_at = ?, error = ? WHERE id = ?",
		state, now.UTC().Format(timeFormat), msg, runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	if err := requireRow(res, runID); err != nil {
		return err
	}
	if err := appendState(ctx, tx, runID, state, now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteLedger) RecordArtifact(ctx context.Context, a ledger.Artifact) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO artifacts(run_id, stage, input_path, output_path, secondary_path,
	paragraphs, sentences, requests, wait_seconds, elapsed_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id, stage, input_path) DO UPDATE SET
	output_path = excluded.output_path,
	secondary_path = excluded.secondary_path,
	paragraphs = excluded.paragraphs,
	sentences = excluded.sentences,
	requests = excluded.requests,
	wait_seconds = excluded.wait_seconds,
	elapsed_ms = excluded.elapsed_ms`,
		a.RunID, a.Stage, a.InputPath, a.OutputPath, a.SecondaryPath,
		a.Paragraphs, a.Sentences, a.Requests, a.WaitSeconds, a.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("record artifact %s/%s: %w", a.Stage, a.InputPath, err)
	}
	return nil
}

func (s *sqliteLedger) GetRun(ctx context.Context, runID string) (ledger.Run, bool, error) {
	var (
		run        ledger.Run
		ignoreCase int
		started    string
		finished   sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, tool, language, ignore_case, input, output, state, started_at, finished_at, error
FROM runs WHERE id = ?`, runID).Scan(
		&run.ID, &run.Tool, &run.Language, &ignoreCase, &run.Input, &run.Output,
		&run.State, &started, &finished, &run.Error)
	if err == sql.ErrNoRows {
		return ledger.Run{}, false, nil
	}
	if err != nil {
		return ledger.Run{}, false, err
	}

	run.IgnoreCase = ignoreCase != 0
	run.StartedAt, _ = time.Parse(timeFormat, started)
	if finished.Valid {
		run.FinishedAt, _ = time.Parse(timeFormat, finished.String)
	}
	return run, true, nil
}

func (s *sqliteLedger) Transitions(ctx context.Context, runID string) ([]ledger.Transition, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT state, at FROM run_states WHERE run_id = ? ORDER BY seq", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Transition
	for rows.Next() {
		var (
			tr ledger.Transition
			at string
		)
		if err := rows.Scan(&tr.State, &at); err != nil {
			return nil, err
		}
		tr.At, _ = time.Parse(timeFormat, at)
		out = append(out, tr)
	}
	return out, rows.Err()
}

func (s *sqliteLedger) Artifacts(ctx context.Context, runID string) ([]ledger.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, stage, input_path, output_path, secondary_path,
	paragraphs, sentences, requests, wait_seconds, elapsed_ms
FROM artifacts WHERE run_id = ?
ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Artifact
	for rows.Next() {
		var (
			a  ledger.Artifact
			ms int64
		)
		if err := rows.Scan(&a.RunID, &a.Stage, &a.InputPath, &a.OutputPath, &a.SecondaryPath,
			&a.Paragraphs, &a.Sentences, &a.Requests, &a.WaitSeconds, &ms); err != nil {
			return nil, err
		}
		a.Elapsed = time.Duration(ms) * time.Millisecond
		out = append(out, a)
	}
	return out, rows.Err()
}

func updateState(ctx context.Context, tx *sql.Tx, runID, state string) error {
	res, err := tx.ExecContext(ctx, "UPDATE runs SET state = ? WHERE id = ?", state, runID)
	if err != nil {
		return fmt.Errorf("update run %s: %w", runID, err)
	}
	return requireRow(res, runID)
}

func appendState(ctx context.Context, tx *sql.Tx, runID, state string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO run_states(run_id, seq, state, at)
SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ? FROM run_states WHERE run_id = ?`,
		runID, state, at.UTC().Format(timeFormat), runID)
	if err != nil {
		return fmt.Errorf("append state %s for run %s: %w", state, runID, err)
	}
	return nil
}

func requireRow(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("ledger: unknown run %s", runID)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
