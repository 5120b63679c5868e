package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SearchParams holds parameters for searching summaries.
type SearchParams struct {
	Query string
	Level string
	Model string
	Limit int
}

// SearchResult is one matching summary with its run context.
type SearchResult struct {
	RunID     string    `json:"run_id"`
	Input     string    `json:"input"`
	Model     string    `json:"model"`
	Level     string    `json:"level"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Search finds summaries whose text matches the query substring.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"sm.text LIKE ?"}
	args := []interface{}{"%" + p.Query + "%"}

	if p.Level != "" {
		where = append(where, "sm.level = ?")
		args = append(args, p.Level)
	}
	if p.Model != "" {
		where = append(where, "r.model = ?")
		args = append(args, p.Model)
	}

	query := fmt.Sprintf(`
		SELECT r.id, r.input, r.model, sm.level, sm.text, sm.created_at
		FROM summaries sm
		INNER JOIN runs r ON r.id = sm.run_id
		WHERE %s
		ORDER BY sm.created_at DESC, sm.seq
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var createdAt string
		if err := rows.Scan(&r.RunID, &r.Input, &r.Model, &r.Level, &r.Text, &createdAt); err != nil {
			return nil, err
		}
		r.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		results = append(results, r)
	}
	return results, rows.Err()
}
