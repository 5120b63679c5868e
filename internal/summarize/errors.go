package summarize

import (
	"fmt"
	"strings"
)

// LevelError is a failure to produce one level.
type LevelError struct {
	Level string
	Err   error
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("level %s: %v", e.Level, e.Err)
}

func (e *LevelError) Unwrap() error { return e.Err }

// PartialError reports the levels that failed under the isolate policy. The
// record written alongside it holds every level that succeeded.
type PartialError struct {
	Failed []*LevelError
	Total  int
}

func (e *PartialError) Error() string {
	names := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		names[i] = f.Level
	}
	return fmt.Sprintf("%d of %d levels failed: %s", len(e.Failed), e.Total, strings.Join(names, ", "))
}

// Unwrap exposes the per-level errors to errors.Is and errors.As.
func (e *PartialError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}
