package summarize

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rcliao/scratchpad/internal/llm"
	"github.com/rcliao/scratchpad/internal/model"
	"github.com/rcliao/scratchpad/internal/store"
)

var errStub = errors.New("service unavailable")

// stubService answers each level with "summary:<level>" padded with whitespace,
// failing for the named levels.
type stubService struct {
	byPrompt map[string]string
	fail     map[string]bool
	delay    bool

	mu       sync.Mutex
	order    []string
	users    []string
	inFlight int32
	peak     int32
}

func newStub(levels []Level, failing ...string) *stubService {
	s := &stubService{byPrompt: map[string]string{}, fail: map[string]bool{}}
	for _, l := range levels {
		s.byPrompt[l.SystemPrompt()] = l.Name
	}
	for _, f := range failing {
		s.fail[f] = true
	}
	return s
}

func (s *stubService) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	n := atomic.AddInt32(&s.inFlight, 1)
	defer atomic.AddInt32(&s.inFlight, -1)
	for {
		p := atomic.LoadInt32(&s.peak)
		if n <= p || atomic.CompareAndSwapInt32(&s.peak, p, n) {
			break
		}
	}

	level, ok := s.byPrompt[req.System]
	if !ok {
		level = "condense"
	}
	s.mu.Lock()
	s.order = append(s.order, level)
	s.users = append(s.users, req.User)
	s.mu.Unlock()

	if s.delay {
		select {
		case <-time.After(time.Duration(rand.Intn(5)) * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.fail[level] {
		return nil, errStub
	}
	if level == "condense" {
		return &llm.Response{Content: "condensed[" + req.User[:1] + "]"}, nil
	}
	return &llm.Response{Content: "  summary:" + level + "\n"}, nil
}

func (s *stubService) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.order...)
}

func TestRun_AllLevels(t *testing.T) {
	levels := DefaultLevels()
	stub := newStub(levels)
	s := New(stub, Options{Model: "gemma3"}, nil, nil)

	rec, err := s.Run(context.Background(), "file.txt", "An article.")
	require.NoError(t, err)

	require.Equal(t, LevelNames(levels), rec.Levels())
	for _, l := range levels {
		text, ok := rec.Get(l.Name)
		require.True(t, ok, l.Name)
		assert.Equal(t, "summary:"+l.Name, text)
	}
}

func TestRun_SequentialOrder(t *testing.T) {
	levels := DefaultLevels()
	stub := newStub(levels)
	s := New(stub, Options{Model: "gemma3", Concurrency: 1}, nil, nil)

	_, err := s.Run(context.Background(), "file.txt", "An article.")
	require.NoError(t, err)

	assert.Equal(t, LevelNames(levels), stub.calls())
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.peak))
	for _, u := range stub.users {
		assert.Equal(t, "An article.", u, "every level gets the full article")
	}
}

func TestRun_ConcurrentKeepsLevelOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	levels := DefaultLevels()
	stub := newStub(levels)
	stub.delay = true
	s := New(stub, Options{Model: "gemma3", Concurrency: 4}, nil, nil)

	rec, err := s.Run(context.Background(), "file.txt", "An article.")
	require.NoError(t, err)

	assert.Equal(t, LevelNames(levels), rec.Levels())
	assert.LessOrEqual(t, atomic.LoadInt32(&stub.peak), int32(4))
	assert.Len(t, stub.calls(), len(levels))
}

func TestSummarize_FailFastWritesNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	in := filepath.Join(dir, "file.txt")
	out := filepath.Join(dir, "summaries.json")
	require.NoError(t, os.WriteFile(in, []byte("An article."), 0o644))

	levels := DefaultLevels()
	stub := newStub(levels, "micro")
	s := New(stub, Options{Model: "gemma3", Policy: PolicyFailFast}, nil, nil)

	rec, err := s.Summarize(context.Background(), in, out)
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, errStub)

	var lerr *LevelError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, "micro", lerr.Level)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output file expected")

	// Sequential fail-fast stops at the failing level.
	assert.Equal(t, []string{"tldr", "headline", "micro"}, stub.calls())
}

func TestSummarize_IsolateWritesPartial(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "file.txt")
	out := filepath.Join(dir, "summaries.json")
	require.NoError(t, os.WriteFile(in, []byte("An article."), 0o644))

	levels := DefaultLevels()
	stub := newStub(levels, "micro", "full")
	s := New(stub, Options{Model: "gemma3", Policy: PolicyIsolate, Concurrency: 3}, nil, nil)

	_, err := s.Summarize(context.Background(), in, out)
	var perr *PartialError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 10, perr.Total)
	require.Len(t, perr.Failed, 2)
	assert.Equal(t, "micro", perr.Failed[0].Level)
	assert.Equal(t, "full", perr.Failed[1].Level)
	assert.ErrorIs(t, err, errStub)

	rec, err := ReadRecord(out)
	require.NoError(t, err)
	assert.Equal(t, 8, rec.Len())
	_, ok := rec.Get("micro")
	assert.False(t, ok)
	text, _ := rec.Get("tldr")
	assert.Equal(t, "summary:tldr", text)
}

func TestSummarize_NoLevelsKeepsPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "file.txt")
	out := filepath.Join(dir, "summaries.json")
	require.NoError(t, os.WriteFile(in, []byte("An article."), 0o644))
	previous := []byte(`{"tldr": "previous good run"}` + "\n")
	require.NoError(t, os.WriteFile(out, previous, 0o644))

	levels := DefaultLevels()
	stub := newStub(levels, LevelNames(levels)...)
	s := New(stub, Options{Model: "gemma3", Policy: PolicyIsolate}, nil, nil)

	rec, err := s.Summarize(context.Background(), in, out)
	var perr *PartialError
	require.ErrorAs(t, err, &perr)
	assert.Len(t, perr.Failed, 10)
	assert.Equal(t, 0, rec.Len())

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, string(previous), string(got))
}

func TestSummarize_CancelledKeepsPreviousOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "file.txt")
	out := filepath.Join(dir, "summaries.json")
	require.NoError(t, os.WriteFile(in, []byte("An article."), 0o644))
	previous := []byte(`{"tldr": "previous good run"}` + "\n")
	require.NoError(t, os.WriteFile(out, previous, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := newStub(DefaultLevels())
	s := New(stub, Options{Model: "gemma3", Policy: PolicyIsolate}, nil, nil)

	rec, err := s.Summarize(ctx, in, out)
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, context.Canceled)
	var perr *PartialError
	assert.False(t, errors.As(err, &perr))
	assert.Empty(t, stub.calls())

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, string(previous), string(got))
}

// cancellingService cancels the run on its first request.
type cancellingService struct {
	cancel context.CancelFunc
	calls  int32
}

func (c *cancellingService) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	atomic.AddInt32(&c.calls, 1)
	c.cancel()
	return nil, ctx.Err()
}

func TestRun_CancelledMidRunAborts(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc := &cancellingService{cancel: cancel}
	s := New(svc, Options{Model: "gemma3", Policy: PolicyIsolate}, st, nil)

	rec, err := s.Run(ctx, "file.txt", "An article.")
	assert.Nil(t, rec)
	assert.ErrorIs(t, err, context.Canceled)
	var perr *PartialError
	assert.False(t, errors.As(err, &perr))
	assert.Equal(t, int32(1), atomic.LoadInt32(&svc.calls))

	run, err := st.LatestRun(context.Background(), HashInput("An article."), "gemma3")
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, run.Status)
}

func TestSummarize_MissingInput(t *testing.T) {
	s := New(newStub(DefaultLevels()), Options{Model: "m"}, nil, nil)
	_, err := s.Summarize(context.Background(), filepath.Join(t.TempDir(), "nope.txt"), "out.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_CondensesLargeInput(t *testing.T) {
	levels := DefaultLevels()[:2]
	stub := newStub(levels)
	s := New(stub, Options{Model: "gemma3", Levels: levels, MaxInputChars: 40}, nil, nil)

	article := "alpha paragraph with some words\n\nbeta paragraph with more words\n\ngamma closing words"
	_, err := s.Run(context.Background(), "long.txt", article)
	require.NoError(t, err)

	calls := stub.calls()
	require.Equal(t, []string{"condense", "condense", "condense", "tldr", "headline"}, calls)
	assert.Equal(t, "condensed[a]\n\ncondensed[b]\n\ncondensed[g]", stub.users[3])
}

func TestRun_CondenseFailureAborts(t *testing.T) {
	levels := DefaultLevels()[:2]
	stub := newStub(levels, "condense")
	s := New(stub, Options{Model: "gemma3", Levels: levels, MaxInputChars: 10}, nil, nil)

	_, err := s.Run(context.Background(), "long.txt", strings.Repeat("word ", 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "condense section 1")
}

func TestRun_CheckpointAndResume(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()

	levels := DefaultLevels()
	first := New(newStub(levels, "brief", "detailed"), Options{Model: "gemma3", Policy: PolicyIsolate}, st, nil)
	_, err = first.Run(ctx, "file.txt", "An article.")
	var perr *PartialError
	require.ErrorAs(t, err, &perr)

	prev, err := st.LatestRun(ctx, HashInput("An article."), "gemma3")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartial, prev.Status)
	assert.Len(t, prev.Summaries, 8)

	stub := newStub(levels)
	second := New(stub, Options{Model: "gemma3", Resume: true}, st, nil)
	rec, err := second.Run(ctx, "file.txt", "An article.")
	require.NoError(t, err)

	assert.Equal(t, []string{"brief", "detailed"}, stub.calls())
	assert.Equal(t, LevelNames(levels), rec.Levels())

	latest, err := st.LatestRun(ctx, HashInput("An article."), "gemma3")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, latest.Status)
	assert.Len(t, latest.Summaries, 10)
	assert.Equal(t, "summary:tldr", mustGet(t, RecordFromRun(latest), "tldr"))
}

func TestRun_ResumeIgnoresOtherModel(t *testing.T) {
	ctx := context.Background()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()

	levels := DefaultLevels()[:3]
	_, err = New(newStub(levels), Options{Model: "gemma3", Levels: levels}, st, nil).Run(ctx, "f", "text")
	require.NoError(t, err)

	stub := newStub(levels)
	_, err = New(stub, Options{Model: "llama3", Levels: levels, Resume: true}, st, nil).Run(ctx, "f", "text")
	require.NoError(t, err)
	assert.Len(t, stub.calls(), 3)
}

func TestRun_RetriesTransientFailures(t *testing.T) {
	var calls int32
	flaky := llm.CompleterFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return nil, errStub
		}
		return &llm.Response{Content: "ok"}, nil
	})
	levels := DefaultLevels()[:1]
	s := New(flaky, Options{Model: "m", Levels: levels, Retries: 1, Policy: PolicyFailFast}, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	rec, err := s.Run(ctx, "f", "text")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Len())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func mustGet(t *testing.T, r *Record, level string) string {
	t.Helper()
	text, ok := r.Get(level)
	require.True(t, ok, level)
	return text
}
