package siteindex

import (
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/scratchpad/internal/config"
)

func testOptions(dir string) Options {
	return OptionsFromConfig(config.Default().Index).withDir(dir)
}

func (o Options) withDir(dir string) Options {
	o.Dir = dir
	return o
}

// writePage creates a page in dir and pins its mtime.
func writePage(t *testing.T, dir, name, content string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func cardCount(page string) int {
	return strings.Count(page, `class="experiment-card"`)
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		ok      bool
	}{
		{"simple", "<html><head><title>Hand Tracker</title></head></html>", "Hand Tracker", true},
		{"case insensitive", "<TITLE>Loud</TITLE>", "Loud", true},
		{"multiline and trimmed", "<title>\n  Two\n  Lines \n</title>", "Two\n  Lines", true},
		{"escaped", "<title>Tom & Jerry <3</title>", "Tom &amp; Jerry &lt;3", true},
		{"first wins", "<title>One</title><title>Two</title>", "One", true},
		{"missing", "<html><body>nothing</body></html>", "", false},
		{"blank", "<title>   </title>", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractTitle([]byte(tt.content))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFallbackTitle(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"hand-tracking_demo.html", "Hand Tracking Demo"},
		{"particles.html", "Particles"},
		{"LOUD-page.html", "Loud Page"},
		{"tom-and-jerry.html", "Tom And Jerry"},
		// Digits do not start a new word.
		{"v2app_test.html", "V2app Test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FallbackTitle(tt.name, ".html"))
		})
	}
}

func TestDiscover_ExcludesFixedNames(t *testing.T) {
	fsys := fstest.MapFS{
		"index.html":    {Data: []byte("old index")},
		"colophon.html": {Data: []byte("colophon")},
		"b.html":        {Data: []byte("b")},
		"a.html":        {Data: []byte("a")},
		"notes.txt":     {Data: []byte("not a page")},
		"sub/c.html":    {Data: []byte("nested")},
	}
	found, err := Discover(fsys, testOptions("."))
	require.NoError(t, err)

	var names []string
	for _, e := range found {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{"a.html", "b.html"}, names)
}

func TestCollect_OrdersByModTimeDescending(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	fsys := fstest.MapFS{
		"old.html":  {Data: []byte("<title>Old</title>"), ModTime: base},
		"new.html":  {Data: []byte("<title>New</title>"), ModTime: base.Add(2 * time.Hour)},
		"mid.html":  {Data: []byte("<title>Mid</title>"), ModTime: base.Add(time.Hour)},
		"tie1.html": {Data: []byte("<title>Tie 1</title>"), ModTime: base.Add(time.Hour)},
	}
	entries, failures, err := Collect(fsys, testOptions("."), nil)
	require.NoError(t, err)
	assert.Empty(t, failures)

	var titles []string
	for _, e := range entries {
		titles = append(titles, e.Title)
	}
	// mid.html and tie1.html share a timestamp and keep discovery order.
	assert.Equal(t, []string{"New", "Mid", "Tie 1", "Old"}, titles)
}

// failingFS refuses to open one file while still listing it.
type failingFS struct {
	fs.FS
	bad string
}

func (f failingFS) Open(name string) (fs.File, error) {
	if name == f.bad {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return f.FS.Open(name)
}

func TestCollect_UnreadableFileFallsBack(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	fsys := failingFS{
		FS: fstest.MapFS{
			"good.html":        {Data: []byte("<title>Good Page</title>"), ModTime: base},
			"locked-page.html": {Data: []byte("<title>Secret</title>"), ModTime: base.Add(time.Hour)},
			"plain.html":       {Data: []byte("no title"), ModTime: base.Add(2 * time.Hour)},
		},
		bad: "locked-page.html",
	}

	entries, failures, err := Collect(fsys, testOptions("."), nil)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Len(t, failures, 1)
	assert.Equal(t, "locked-page.html", failures[0].Name)
	assert.True(t, errors.Is(failures[0].Err, fs.ErrPermission))

	assert.Equal(t, "Plain", entries[0].Title)
	assert.Equal(t, "Locked Page", entries[1].Title)
	assert.Equal(t, "Good Page", entries[2].Title)
}

func TestBuild_NoFilesWritesNothing(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "colophon.html", "<title>Colophon</title>", time.Now())

	res, err := Build(testOptions(dir), nil)
	require.ErrorIs(t, err, ErrNoEntries)
	assert.False(t, res.Written)

	_, statErr := os.Stat(filepath.Join(dir, "index.html"))
	assert.True(t, os.IsNotExist(statErr), "index.html must not be created")
}

func TestBuild_WritesOneCardPerFile(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 1, 2, 10, 0, 0, 0, time.Local)
	writePage(t, dir, "first.html", "<title>First</title>", base)
	writePage(t, dir, "second.html", "<title>Second</title>", base.Add(24*time.Hour))
	writePage(t, dir, "third_try.html", "<p>untitled</p>", base.Add(48*time.Hour))

	res, err := Build(testOptions(dir), nil)
	require.NoError(t, err)
	assert.True(t, res.Written)
	assert.Len(t, res.Entries, 3)

	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	page := string(data)

	assert.Equal(t, 3, cardCount(page))
	assert.Contains(t, page, "<strong>3</strong> experiments and counting...")
	assert.Contains(t, page, "Last modified: January 02, 2025")
	assert.Contains(t, page, "Third Try")

	third := strings.Index(page, "third_try.html")
	second := strings.Index(page, "second.html")
	first := strings.Index(page, "first.html")
	assert.True(t, third < second && second < first, "cards must be newest first")
}

func TestBuild_Idempotent(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.Local)
	writePage(t, dir, "a.html", "<title>A &amp; B</title>", base)
	writePage(t, dir, "b.html", "<title>B</title>", base.Add(time.Minute))

	_, err := Build(testOptions(dir), nil)
	require.NoError(t, err)
	first, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)

	_, err = Build(testOptions(dir), nil)
	require.NoError(t, err)
	second, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Equal(t, 2, cardCount(string(second)), "the index must not list itself")
}

func TestBuild_CustomOutputIsExcluded(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "a.html", "<title>A</title>", time.Now())
	opts := testOptions(dir)
	opts.Output = "listing.html"

	_, err := Build(opts, nil)
	require.NoError(t, err)
	res, err := Build(opts, nil)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 1)
}

func TestServer_Rebuild(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	writePage(t, dir, "demo.html", "<title>Demo</title>", time.Now())

	srv := NewServer(testOptions(dir), nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rebuild", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"entries":1`)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Demo")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
