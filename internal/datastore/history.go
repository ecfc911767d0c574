package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aleister1102/ayumi/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// HistoryDB keeps one row per run and one row per action branch in SQLite
type HistoryDB struct {
	db     *sql.DB
	logger zerolog.Logger
}

// RunRecord is a row of run_history
type RunRecord struct {
	RunID         string
	StartedAt     time.Time
	FinishedAt    *time.Time
	Status        models.RunStatus
	Input         string
	OutputPath    string
	TotalFindings int
}

// NewHistoryDB opens (creating if needed) the history database at path
func NewHistoryDB(path string, logger zerolog.Logger) (*HistoryDB, error) {
	logger = logger.With().Str("component", "HistoryDB").Logger()
	logger.Debug().Str("db_path", path).Msg("Initializing history database connection")

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history database directory %s: %w", dir, err)
		}
	}

	dbInstance, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// a single connection keeps concurrent branch writes from hitting SQLITE_BUSY
	dbInstance.SetMaxOpenConns(1)

	h := &HistoryDB{db: dbInstance, logger: logger}
	if err := h.InitSchema(); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return h, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// InitSchema creates the run_history and action_history tables
func (h *HistoryDB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS run_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT UNIQUE NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		status TEXT NOT NULL,
		input TEXT NOT NULL,
		output_path TEXT,
		total_findings INTEGER DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS action_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		action TEXT NOT NULL,
		tool TEXT,
		status TEXT NOT NULL,
		raw_targets INTEGER DEFAULT 0,
		unique_targets INTEGER DEFAULT 0,
		findings INTEGER DEFAULT 0,
		duration_ms INTEGER DEFAULT 0,
		error TEXT,
		warnings TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_action_history_run_id ON action_history(run_id);
	`
	if _, err := h.db.Exec(query); err != nil {
		h.logger.Error().Err(err).Msg("Failed to initialize history schema")
		return err
	}
	return nil
}

// RecordRunStart inserts a STARTED row for runID
func (h *HistoryDB) RecordRunStart(ctx context.Context, runID, input string, startedAt time.Time) error {
	query := `INSERT INTO run_history (run_id, started_at, status, input) VALUES (?, ?, ?, ?)`
	if _, err := h.db.ExecContext(ctx, query, runID, startedAt.UnixMilli(), string(models.RunStatusStarted), input); err != nil {
		return fmt.Errorf("failed to insert run start record: %w", err)
	}
	h.logger.Debug().Str("run_id", runID).Msg("Recorded run start")
	return nil
}

// RecordRunCompletion finalises the run row and stores one row per action branch
func (h *HistoryDB) RecordRunCompletion(ctx context.Context, summary models.RunSummary) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	finished := summary.StartedAt.Add(summary.Duration).UnixMilli()
	res, err := tx.ExecContext(ctx,
		`UPDATE run_history SET finished_at = ?, status = ?, output_path = ?, total_findings = ? WHERE run_id = ?`,
		finished, string(summary.Status), nullString(summary.OutputPath), summary.TotalFindings(), summary.RunID)
	if err != nil {
		return fmt.Errorf("failed to update run completion for %s: %w", summary.RunID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// no start row, e.g. history was enabled mid-run
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_history (run_id, started_at, finished_at, status, input, output_path, total_findings) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			summary.RunID, summary.StartedAt.UnixMilli(), finished, string(summary.Status), summary.Input,
			nullString(summary.OutputPath), summary.TotalFindings()); err != nil {
			return fmt.Errorf("failed to insert run record for %s: %w", summary.RunID, err)
		}
	}

	for _, a := range summary.Actions {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO action_history (run_id, action, tool, status, raw_targets, unique_targets, findings, duration_ms, error, warnings) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			summary.RunID, a.Action, nullString(a.Tool), string(a.Status), a.RawTargets, a.UniqueTargets, a.Findings,
			a.Duration.Milliseconds(), nullString(a.Error), nullString(strings.Join(a.Warnings, "\n"))); err != nil {
			return fmt.Errorf("failed to insert action record %s: %w", a.Action, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run completion: %w", err)
	}
	h.logger.Info().Str("run_id", summary.RunID).Str("status", string(summary.Status)).Msg("Recorded run completion")
	return nil
}

// LastRun returns the most recently started run, or nil when the history is empty
func (h *HistoryDB) LastRun(ctx context.Context) (*RunRecord, error) {
	runs, err := h.RecentRuns(ctx, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// RecentRuns returns up to limit runs, newest first
func (h *HistoryDB) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT run_id, started_at, finished_at, status, input, output_path, total_findings FROM run_history ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var (
			rec        RunRecord
			started    int64
			finished   sql.NullInt64
			status     string
			outputPath sql.NullString
		)
		if err := rows.Scan(&rec.RunID, &started, &finished, &status, &rec.Input, &outputPath, &rec.TotalFindings); err != nil {
			return nil, fmt.Errorf("failed to scan run history row: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started)
		if finished.Valid {
			t := time.UnixMilli(finished.Int64)
			rec.FinishedAt = &t
		}
		rec.Status = models.RunStatus(status)
		rec.OutputPath = outputPath.String
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to iterate run history: %w", err)
	}
	return runs, nil
}

// ActionCount returns how many action rows were stored for runID
func (h *HistoryDB) ActionCount(ctx context.Context, runID string) (int, error) {
	var n int
	if err := h.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_history WHERE run_id = ?`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count action history: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
