package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rcliao/scratchpad/internal/model"
)

// Export returns every run with its summaries, oldest first, optionally
// filtered by input path.
func (s *SQLiteStore) Export(ctx context.Context, input string) ([]model.Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []interface{}
	if input != "" {
		query += ` WHERE input = ?`
		args = append(args, input)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range runs {
		runs[i].Summaries, err = s.summaries(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// Import loads runs produced by Export. Runs whose id already exists are
// skipped, so importing the same file twice is harmless. It returns how many
// runs were added.
func (s *SQLiteStore) Import(ctx context.Context, runs []model.Run) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	for _, r := range runs {
		if r.ID == "" || r.Input == "" || r.InputHash == "" {
			return 0, fmt.Errorf("run %q: id, input and input hash are required", r.ID)
		}
		if !model.ValidStatuses[r.Status] {
			return 0, fmt.Errorf("run %s: invalid status %q", r.ID, r.Status)
		}
		var finished sql.NullString
		if r.FinishedAt != nil {
			finished = sql.NullString{String: r.FinishedAt.UTC().Format(timeLayout), Valid: true}
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO runs (id, input, input_hash, provider, model, policy, status, error, created_at, finished_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Input, r.InputHash, r.Provider, r.Model, r.Policy, r.Status,
			nullable(r.Error), r.CreatedAt.UTC().Format(timeLayout), finished)
		if err != nil {
			return 0, fmt.Errorf("import run %s: %w", r.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		for _, sm := range r.Summaries {
			if sm.ID == "" {
				sm.ID = s.newID()
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO summaries (id, run_id, level, seq, text, input_tokens, output_tokens, duration_ms, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				sm.ID, r.ID, sm.Level, sm.Seq, sm.Text, sm.InputTokens, sm.OutputTokens, sm.DurationMS,
				createdOrNow(sm.CreatedAt).Format(timeLayout))
			if err != nil {
				return 0, fmt.Errorf("import summary %s/%s: %w", r.ID, sm.Level, err)
			}
		}
		imported++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return imported, nil
}

func nullable(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func createdOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
