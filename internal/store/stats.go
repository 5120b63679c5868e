package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath         string         `json:"db_path"`
	DBSizeBytes    int64          `json:"db_size_bytes"`
	TotalRuns      int            `json:"total_runs"`
	TotalSummaries int            `json:"total_summaries"`
	ByStatus       map[string]int `json:"by_status"`
	Models         []ModelStats   `json:"models"`
}

// ModelStats holds per-model counts.
type ModelStats struct {
	Model  string `json:"model"`
	Runs   int    `json:"runs"`
	Inputs int    `json:"inputs"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, ByStatus: map[string]int{}}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&st.TotalRuns)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM summaries`).Scan(&st.TotalSummaries)

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM runs GROUP BY status`)
	if err != nil {
		return st, err
	}
	for rows.Next() {
		var status string
		var n int
		rows.Scan(&status, &n)
		st.ByStatus[status] = n
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT model, COUNT(*) AS cnt, COUNT(DISTINCT input_hash) AS inputs
		FROM runs GROUP BY model ORDER BY cnt DESC, model`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var m ModelStats
		rows.Scan(&m.Model, &m.Runs, &m.Inputs)
		st.Models = append(st.Models, m)
	}

	return st, nil
}
