package llm

import (
	"context"
	"fmt"
	"time"
)

// retrying wraps a Completer with exponential backoff.
type retrying struct {
	next    Completer
	retries int
	backoff time.Duration
}

// WithRetry retries failed completions up to retries extra times, doubling a one
// second backoff between attempts. Context cancellation is never retried.
func WithRetry(c Completer, retries int) Completer {
	return &retrying{next: c, retries: retries, backoff: time.Second}
}

func (r *retrying) Complete(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		resp, err := r.next.Complete(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == r.retries {
			break
		}

		wait := r.backoff << uint(attempt)
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", r.retries+1, lastErr)
}
