package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/scratchpad/internal/config"
	"github.com/rcliao/scratchpad/internal/llm"
	"github.com/rcliao/scratchpad/internal/logging"
	"github.com/rcliao/scratchpad/internal/model"
	"github.com/rcliao/scratchpad/internal/store"
)

// Policy decides what a level failure does to the rest of the run.
type Policy string

const (
	// PolicyFailFast aborts on the first failed level and writes nothing.
	PolicyFailFast Policy = "fail-fast"
	// PolicyIsolate keeps going, writes the levels that succeeded and reports the rest.
	PolicyIsolate Policy = "isolate"
)

const condenseInstruction = "Condense this section of a longer article, keeping its key facts and figures."

// Options configures a Summarizer.
type Options struct {
	Provider string
	Model    string
	Levels   []Level
	Policy   Policy

	// Concurrency bounds in-flight level requests. 1 runs levels strictly in order.
	Concurrency int

	// MaxInputChars condenses longer articles section by section first. 0 means unlimited.
	MaxInputChars int

	// Retries wraps the completer with exponential backoff when positive.
	Retries int

	// Resume reuses completed levels from the latest stored run for the same
	// input and model. Requires a store.
	Resume bool
}

// OptionsFromConfig maps the summarize config section onto Options.
func OptionsFromConfig(c config.SummarizeConfig) Options {
	return Options{
		Provider:      c.Provider,
		Model:         c.Model,
		Levels:        LevelsFromConfig(c.Levels),
		Policy:        Policy(c.Policy),
		Concurrency:   c.Concurrency,
		MaxInputChars: c.MaxInputChars,
		Retries:       c.Retries,
	}
}

// Summarizer runs one stateless completion per level.
type Summarizer struct {
	c     llm.Completer
	opts  Options
	store store.Store
	log   *zap.Logger
}

// New creates a Summarizer. st may be nil, which disables checkpointing and resume.
func New(c llm.Completer, opts Options, st store.Store, log *zap.Logger) *Summarizer {
	if len(opts.Levels) == 0 {
		opts.Levels = DefaultLevels()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Policy == "" {
		opts.Policy = PolicyIsolate
	}
	if opts.Retries > 0 {
		c = llm.WithRetry(c, opts.Retries)
	}
	return &Summarizer{c: c, opts: opts, store: st, log: logging.OrNop(log)}
}

// Summarize reads inputPath, runs every level and writes the record to outputPath.
// Under fail-fast any level error returns before anything is written. Under
// isolate the partial record is written and a *PartialError is returned. A
// record with no levels is never written, so an earlier output file survives.
func (s *Summarizer) Summarize(ctx context.Context, inputPath, outputPath string) (*Record, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	rec, err := s.Run(ctx, inputPath, string(data))
	var partial *PartialError
	if err != nil && !errors.As(err, &partial) {
		return nil, err
	}
	if rec.Len() == 0 {
		return rec, err
	}

	if werr := WriteRecord(outputPath, rec); werr != nil {
		return rec, werr
	}
	return rec, err
}

// Run produces the record for article. name identifies the input in the run store.
// Cancelling ctx aborts the run with ctx.Err().
func (s *Summarizer) Run(ctx context.Context, name, article string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	levels := s.opts.Levels
	hash := HashInput(article)

	resumed := s.resumable(ctx, hash)

	var run *model.Run
	if s.store != nil {
		var err error
		run, err = s.store.CreateRun(ctx, store.CreateRunParams{
			Input:     name,
			InputHash: hash,
			Provider:  s.opts.Provider,
			Model:     s.opts.Model,
			Policy:    string(s.opts.Policy),
		})
		if err != nil {
			return nil, fmt.Errorf("create run: %w", err)
		}
		s.log.Debug("run created", zap.String("run", run.ID), zap.String("input", name))
	}

	texts := make([]string, len(levels))
	done := make([]bool, len(levels))
	pending := 0
	for i, l := range levels {
		if t, ok := resumed[l.Name]; ok {
			texts[i], done[i] = t, true
			s.checkpoint(ctx, run, i, l.Name, &llm.Response{Content: t})
			continue
		}
		pending++
	}
	if len(resumed) > 0 {
		s.log.Info("resuming from previous run",
			zap.Int("reused", len(levels)-pending), zap.Int("pending", pending))
	}

	if pending > 0 {
		content, err := s.prepare(ctx, article)
		if err != nil {
			s.finish(ctx, run, model.StatusFailed, err)
			return nil, err
		}

		failures, err := s.fanOut(ctx, run, content, texts, done)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			s.finish(ctx, run, model.StatusFailed, err)
			return nil, err
		}

		rec := buildRecord(levels, texts, done)
		if len(failures) > 0 {
			perr := &PartialError{Failed: failures, Total: len(levels)}
			status := model.StatusPartial
			if rec.Len() == 0 {
				status = model.StatusFailed
			}
			s.finish(ctx, run, status, perr)
			return rec, perr
		}
		s.finish(ctx, run, model.StatusDone, nil)
		return rec, nil
	}

	s.finish(ctx, run, model.StatusDone, nil)
	return buildRecord(levels, texts, done), nil
}

// fanOut requests every level not yet done. Under fail-fast the first error
// cancels the rest and is returned; under isolate failures are collected in
// level order.
func (s *Summarizer) fanOut(ctx context.Context, run *model.Run, content string, texts []string, done []bool) ([]*LevelError, error) {
	levels := s.opts.Levels
	failed := make([]*LevelError, len(levels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, l := range levels {
		if done[i] {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				failed[i] = &LevelError{Level: l.Name, Err: err}
				if s.opts.Policy == PolicyFailFast {
					return failed[i]
				}
				return nil
			}

			resp, err := s.c.Complete(gctx, llm.Request{
				Model:  s.opts.Model,
				System: l.SystemPrompt(),
				User:   content,
			})
			if err != nil {
				failed[i] = &LevelError{Level: l.Name, Err: err}
				if s.opts.Policy == PolicyFailFast {
					return failed[i]
				}
				s.log.Warn("level failed", zap.String("level", l.Name), zap.Error(err))
				return nil
			}

			texts[i] = strings.TrimSpace(resp.Content)
			done[i] = true
			s.log.Debug("level summarized",
				zap.String("level", l.Name),
				zap.Duration("took", resp.Duration),
				zap.Int("output_tokens", resp.OutputTokens))
			s.checkpoint(gctx, run, i, l.Name, resp)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var failures []*LevelError
	for _, f := range failed {
		if f != nil {
			failures = append(failures, f)
		}
	}
	return failures, nil
}

// prepare returns the user content for every level. Articles longer than
// MaxInputChars are condensed section by section and rejoined.
func (s *Summarizer) prepare(ctx context.Context, article string) (string, error) {
	limit := s.opts.MaxInputChars
	if limit <= 0 || len(article) <= limit {
		return article, nil
	}

	sections := SplitSections(article, limit)
	s.log.Info("input exceeds limit, condensing sections",
		zap.Int("chars", len(article)), zap.Int("limit", limit), zap.Int("sections", len(sections)))

	condensed := make([]string, len(sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, sec := range sections {
		g.Go(func() error {
			resp, err := s.c.Complete(gctx, llm.Request{
				Model:  s.opts.Model,
				System: systemPrefix + condenseInstruction,
				User:   sec.Text,
			})
			if err != nil {
				return fmt.Errorf("condense section %d (lines %d-%d): %w", i+1, sec.StartLine, sec.EndLine, err)
			}
			condensed[i] = strings.TrimSpace(resp.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(condensed, "\n\n"), nil
}

// resumable returns completed level texts from the latest run for hash, if resuming.
func (s *Summarizer) resumable(ctx context.Context, hash string) map[string]string {
	out := map[string]string{}
	if !s.opts.Resume || s.store == nil {
		return out
	}
	prev, err := s.store.LatestRun(ctx, hash, s.opts.Model)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.log.Warn("resume lookup failed", zap.Error(err))
		}
		return out
	}
	for _, sm := range prev.Summaries {
		if sm.Text != "" {
			out[sm.Level] = sm.Text
		}
	}
	return out
}

func (s *Summarizer) checkpoint(ctx context.Context, run *model.Run, seq int, level string, resp *llm.Response) {
	if run == nil {
		return
	}
	_, err := s.store.SaveSummary(ctx, store.SaveSummaryParams{
		RunID:        run.ID,
		Level:        level,
		Seq:          seq,
		Text:         strings.TrimSpace(resp.Content),
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
		DurationMS:   resp.Duration.Milliseconds(),
	})
	if err != nil {
		s.log.Warn("checkpoint failed", zap.String("level", level), zap.Error(err))
	}
}

func (s *Summarizer) finish(ctx context.Context, run *model.Run, status string, cause error) {
	if run == nil {
		return
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	// The run may have been cancelled; its final status is still recorded.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.store.FinishRun(ctx, run.ID, status, msg); err != nil {
		s.log.Warn("finish run failed", zap.String("run", run.ID), zap.Error(err))
	}
}

func buildRecord(levels []Level, texts []string, done []bool) *Record {
	rec := NewRecord()
	for i, l := range levels {
		if done[i] {
			rec.Set(l.Name, texts[i])
		}
	}
	return rec
}

// HashInput identifies an article for resume.
func HashInput(article string) string {
	sum := sha256.Sum256([]byte(article))
	return hex.EncodeToString(sum[:])
}
