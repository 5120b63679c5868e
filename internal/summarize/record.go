package summarize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rcliao/scratchpad/internal/atomicfile"
	"github.com/rcliao/scratchpad/internal/model"
)

// Record maps level name to summary text. Keys keep insertion order, which is
// the level order when built by a Summarizer, and JSON encoding follows it.
type Record struct {
	order []string
	text  map[string]string
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{text: make(map[string]string)}
}

// Set stores text for level, appending level to the key order if it is new.
func (r *Record) Set(level, text string) {
	if _, ok := r.text[level]; !ok {
		r.order = append(r.order, level)
	}
	r.text[level] = text
}

// Get returns the text for level.
func (r *Record) Get(level string) (string, bool) {
	t, ok := r.text[level]
	return t, ok
}

// Levels returns the level names in order.
func (r *Record) Levels() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Len is the number of levels present.
func (r *Record) Len() int { return len(r.order) }

// MarshalJSON encodes the record as an object with keys in level order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, level := range r.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(level); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(r.text[level]); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of strings, keeping the key order found in data.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("summary record must be a JSON object")
	}

	rec := NewRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", tok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("level %s: %w", key, err)
		}
		rec.Set(key, text)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = *rec
	return nil
}

// Markdown renders the record as one section per level.
func (r *Record) Markdown(title string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	for _, level := range r.order {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", level, r.text[level])
	}
	return b.String()
}

// RecordFromRun builds a record from the stored summaries of a run.
func RecordFromRun(run *model.Run) *Record {
	rec := NewRecord()
	for _, s := range run.Summaries {
		rec.Set(s.Level, s.Text)
	}
	return rec
}

// WriteRecord writes the record as two-space indented UTF-8 JSON, replacing
// path atomically.
func WriteRecord(path string, r *Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := atomicfile.Write(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadRecord loads a record written by WriteRecord.
func ReadRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rec := NewRecord()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rec, nil
}
