// Package store provides the summarization run storage interface and SQLite implementation.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/scratchpad/internal/model"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

// CreateRunParams holds parameters for starting a run.
type CreateRunParams struct {
	Input     string
	InputHash string
	Provider  string
	Model     string
	Policy    string
}

// SaveSummaryParams holds one completed level.
type SaveSummaryParams struct {
	RunID        string
	Level        string
	Seq          int
	Text         string
	InputTokens  int
	OutputTokens int
	DurationMS   int64
}

// ListParams holds parameters for listing runs.
type ListParams struct {
	Input  string
	Status string
	Limit  int
}

// Store defines the run storage interface.
type Store interface {
	// CreateRun records the start of a run. Returns the created run.
	CreateRun(ctx context.Context, p CreateRunParams) (*model.Run, error)

	// SaveSummary persists one level as soon as it completes.
	// Saving the same level twice replaces the earlier text.
	SaveSummary(ctx context.Context, p SaveSummaryParams) (*model.Summary, error)

	// FinishRun sets the terminal status of a run.
	FinishRun(ctx context.Context, id, status, errMsg string) error

	// GetRun retrieves a run with its summaries in level order.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// LatestRun returns the newest run for the same input hash and model.
	LatestRun(ctx context.Context, inputHash, modelName string) (*model.Run, error)

	// ListRuns lists runs newest first, without summaries.
	ListRuns(ctx context.Context, p ListParams) ([]model.Run, error)

	// Rm deletes a run and its summaries.
	Rm(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
