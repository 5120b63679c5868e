// Package model defines the core summarization run data types.
package model

import "time"

// Run status values.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

// Run represents one summarize invocation over a single input.
type Run struct {
	ID         string     `json:"id"`
	Input      string     `json:"input"`
	InputHash  string     `json:"input_hash"`
	Provider   string     `json:"provider"`
	Model      string     `json:"model"`
	Policy     string     `json:"policy"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Summaries  []Summary  `json:"summaries,omitempty"`
}

// Summary is the text produced for one level of a run.
type Summary struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id"`
	Level        string    `json:"level"`
	Seq          int       `json:"seq"`
	Text         string    `json:"text"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	DurationMS   int64     `json:"duration_ms,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ValidStatuses are the allowed run statuses.
var ValidStatuses = map[string]bool{
	StatusRunning: true,
	StatusDone:    true,
	StatusPartial: true,
	StatusFailed:  true,
}
