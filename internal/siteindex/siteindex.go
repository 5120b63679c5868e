// Package siteindex regenerates the listing page for a directory of experiment pages.
package siteindex

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rcliao/scratchpad/internal/atomicfile"
	"github.com/rcliao/scratchpad/internal/config"
	"github.com/rcliao/scratchpad/internal/logging"
)

// ErrNoEntries is returned by Build when the directory holds nothing to list.
// No output file is written in that case.
var ErrNoEntries = errors.New("no files found to index")

// Options controls discovery and page content.
type Options struct {
	Dir       string
	Output    string
	Extension string
	Exclude   []string
	SiteTitle string
	Subtitle  string
	Footer    string
	Links     []config.Link
}

// OptionsFromConfig maps the index section of the config file.
func OptionsFromConfig(c config.IndexConfig) Options {
	return Options{
		Dir:       c.Dir,
		Output:    c.Output,
		Extension: c.Extension,
		Exclude:   c.Exclude,
		SiteTitle: c.SiteTitle,
		Subtitle:  c.Subtitle,
		Footer:    c.Footer,
		Links:     c.Links,
	}
}

// Entry is one listed page. Title is already HTML-escaped.
type Entry struct {
	Name    string
	Title   string
	ModTime time.Time
}

// Failure records a file whose title could not be read.
type Failure struct {
	Name string
	Err  error
}

// Result summarises one Build.
type Result struct {
	Entries  []Entry
	Failures []Failure
	Output   string
	Written  bool
}

// OutputPath is where Build writes the page.
func (o Options) OutputPath() string {
	if filepath.IsAbs(o.Output) {
		return o.Output
	}
	return filepath.Join(o.Dir, o.Output)
}

func (o Options) excluded(name string) bool {
	if name == filepath.Base(o.Output) {
		return true
	}
	for _, ex := range o.Exclude {
		if name == ex {
			return true
		}
	}
	return false
}

// Matches reports whether name is a page Build would list.
func (o Options) Matches(name string) bool {
	return strings.HasSuffix(name, o.Extension) && !o.excluded(name)
}

// Discover lists matching regular files in the top level of fsys, in lexical order.
func Discover(fsys fs.FS, opts Options) ([]fs.DirEntry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var matched []fs.DirEntry
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if !opts.Matches(e.Name()) {
			continue
		}
		matched = append(matched, e)
	}
	return matched, nil
}

// Collect derives an Entry per discovered file, newest first. A file that cannot be
// read keeps its place in the listing with a filename-derived title.
func Collect(fsys fs.FS, opts Options, log *zap.Logger) ([]Entry, []Failure, error) {
	log = logging.OrNop(log)

	found, err := Discover(fsys, opts)
	if err != nil {
		return nil, nil, err
	}

	var failures []Failure
	entries := make([]Entry, 0, len(found))
	for _, de := range found {
		name := de.Name()
		entry := Entry{Name: name}

		if info, err := de.Info(); err == nil {
			entry.ModTime = info.ModTime()
		} else {
			log.Warn("stat failed", zap.String("file", name), zap.Error(err))
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			log.Warn("error reading file, using filename title", zap.String("file", name), zap.Error(err))
			failures = append(failures, Failure{Name: name, Err: err})
			entry.Title = FallbackTitle(name, opts.Extension)
			entries = append(entries, entry)
			continue
		}

		title, ok := ExtractTitle(content)
		if !ok {
			title = FallbackTitle(name, opts.Extension)
		}
		entry.Title = title
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ModTime.After(entries[j].ModTime)
	})
	return entries, failures, nil
}

// Build regenerates the index page for opts.Dir.
func Build(opts Options, log *zap.Logger) (*Result, error) {
	log = logging.OrNop(log)
	res := &Result{Output: opts.OutputPath()}

	entries, failures, err := Collect(os.DirFS(opts.Dir), opts, log)
	if err != nil {
		return nil, err
	}
	res.Entries = entries
	res.Failures = failures

	if len(entries) == 0 {
		return res, ErrNoEntries
	}

	var buf bytes.Buffer
	if err := Render(&buf, entries, opts); err != nil {
		return nil, err
	}
	if err := atomicfile.Write(res.Output, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write index: %w", err)
	}
	res.Written = true

	log.Debug("index written", zap.String("output", res.Output), zap.Int("entries", len(entries)))
	return res, nil
}
