package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/scratchpad/internal/model"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy io.Reader
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Summaries are saved from concurrent workers; one connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:      db,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		input       TEXT NOT NULL,
		input_hash  TEXT NOT NULL,
		provider    TEXT NOT NULL,
		model       TEXT NOT NULL,
		policy      TEXT NOT NULL,
		status      TEXT NOT NULL DEFAULT 'running',
		error       TEXT,
		created_at  TEXT NOT NULL,
		finished_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_hash_model ON runs(input_hash, model);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

	CREATE TABLE IF NOT EXISTS summaries (
		id            TEXT PRIMARY KEY,
		run_id        TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		level         TEXT NOT NULL,
		seq           INTEGER NOT NULL,
		text          TEXT NOT NULL,
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		duration_ms   INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		UNIQUE (run_id, level)
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_run ON summaries(run_id, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(ctx context.Context, p CreateRunParams) (*model.Run, error) {
	if p.Input == "" || p.InputHash == "" {
		return nil, fmt.Errorf("input and input hash are required")
	}
	now := time.Now().UTC()
	id := s.newID()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input, input_hash, provider, model, policy, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, p.Input, p.InputHash, p.Provider, p.Model, p.Policy, model.StatusRunning,
		now.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return &model.Run{
		ID:        id,
		Input:     p.Input,
		InputHash: p.InputHash,
		Provider:  p.Provider,
		Model:     p.Model,
		Policy:    p.Policy,
		Status:    model.StatusRunning,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) SaveSummary(ctx context.Context, p SaveSummaryParams) (*model.Summary, error) {
	now := time.Now().UTC()
	id := s.newID()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO summaries (id, run_id, level, seq, text, input_tokens, output_tokens, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, level) DO UPDATE SET
		   id = excluded.id, seq = excluded.seq, text = excluded.text,
		   input_tokens = excluded.input_tokens, output_tokens = excluded.output_tokens,
		   duration_ms = excluded.duration_ms, created_at = excluded.created_at`,
		id, p.RunID, p.Level, p.Seq, p.Text, p.InputTokens, p.OutputTokens, p.DurationMS,
		now.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("insert summary: %w", err)
	}

	return &model.Summary{
		ID:           id,
		RunID:        p.RunID,
		Level:        p.Level,
		Seq:          p.Seq,
		Text:         p.Text,
		InputTokens:  p.InputTokens,
		OutputTokens: p.OutputTokens,
		DurationMS:   p.DurationMS,
		CreatedAt:    now,
	}, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, id, status, errMsg string) error {
	if !model.ValidStatuses[status] {
		return fmt.Errorf("invalid status %q", status)
	}
	var errPtr *string
	if errMsg != "" {
		errPtr = &errMsg
	}
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, errPtr, now, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return nil
}

const runColumns = `id, input, input_hash, provider, model, policy, status, error, created_at, finished_at`

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	r.Summaries, err = s.summaries(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context, inputHash, modelName string) (*model.Run, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs WHERE input_hash = ? AND model = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`, inputHash, modelName).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run for %s/%s: %w", inputHash, modelName, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s.GetRun(ctx, id)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, p ListParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	var args []interface{}
	if p.Input != "" {
		where = append(where, "input = ?")
		args = append(args, p.Input)
	}
	if p.Status != "" {
		where = append(where, "status = ?")
		args = append(args, p.Status)
	}

	query := fmt.Sprintf(`SELECT %s FROM runs WHERE %s ORDER BY created_at DESC, id DESC LIMIT ?`,
		runColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Rm(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM summaries WHERE run_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) summaries(ctx context.Context, runID string) ([]model.Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, level, seq, text, input_tokens, output_tokens, duration_ms, created_at
		 FROM summaries WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Summary
	for rows.Next() {
		var sm model.Summary
		var createdAt string
		if err := rows.Scan(&sm.ID, &sm.RunID, &sm.Level, &sm.Seq, &sm.Text,
			&sm.InputTokens, &sm.OutputTokens, &sm.DurationMS, &createdAt); err != nil {
			return nil, err
		}
		sm.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, sm)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (model.Run, error) {
	var r model.Run
	var errMsg, finishedAt sql.NullString
	var createdAt string

	err := row.Scan(
		&r.ID, &r.Input, &r.InputHash, &r.Provider, &r.Model, &r.Policy,
		&r.Status, &errMsg, &createdAt, &finishedAt,
	)
	if err != nil {
		return r, err
	}

	r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if errMsg.Valid {
		r.Error = errMsg.String
	}
	if finishedAt.Valid {
		t, _ := time.Parse(timeLayout, finishedAt.String)
		r.FinishedAt = &t
	}
	return r, nil
}
