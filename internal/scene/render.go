package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/rcliao/scratchpad/internal/atomicfile"
)

// Renderer consumes a run. Frame is called once per stage, in order.
type Renderer interface {
	Begin(ctx context.Context, meta Meta) error
	Frame(ctx context.Context, f Frame) error
	End(ctx context.Context, tl *Timeline) error
}

// TimelineFile is the name TimelineRenderer writes.
const TimelineFile = "timeline.json"

// TimelineRenderer writes the directive stream as JSON when the run ends.
type TimelineRenderer struct {
	Dir string
}

func (r *TimelineRenderer) Begin(ctx context.Context, meta Meta) error {
	return os.MkdirAll(r.Dir, 0o755)
}

func (r *TimelineRenderer) Frame(ctx context.Context, f Frame) error { return nil }

func (r *TimelineRenderer) End(ctx context.Context, tl *Timeline) error {
	data, err := json.MarshalIndent(tl, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal timeline: %w", err)
	}
	return atomicfile.Write(filepath.Join(r.Dir, TimelineFile), append(data, '\n'), 0o644)
}

// MultiRenderer forwards every call to each renderer in order and stops at the
// first error.
type MultiRenderer []Renderer

func (m MultiRenderer) Begin(ctx context.Context, meta Meta) error {
	for _, r := range m {
		if err := r.Begin(ctx, meta); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiRenderer) Frame(ctx context.Context, f Frame) error {
	for _, r := range m {
		if err := r.Frame(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiRenderer) End(ctx context.Context, tl *Timeline) error {
	for _, r := range m {
		if err := r.End(ctx, tl); err != nil {
			return err
		}
	}
	return nil
}

// Recorder keeps frames in memory.
type Recorder struct {
	Meta     Meta
	Frames   []Frame
	Timeline *Timeline
}

func (r *Recorder) Begin(ctx context.Context, meta Meta) error {
	r.Meta = meta
	r.Frames = nil
	return nil
}

func (r *Recorder) Frame(ctx context.Context, f Frame) error {
	r.Frames = append(r.Frames, f)
	return nil
}

func (r *Recorder) End(ctx context.Context, tl *Timeline) error {
	r.Timeline = tl
	return nil
}

// KeyframeName is the file name of stage index's keyframe.
func KeyframeName(index int, label string) string {
	return fmt.Sprintf("%02d-%s.svg", index+1, slug(label))
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "stage"
	}
	return out
}
