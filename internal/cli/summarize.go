package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/scratchpad/internal/llm"
	"github.com/rcliao/scratchpad/internal/store"
	"github.com/rcliao/scratchpad/internal/summarize"
)

func init() {
	cmd := &cobra.Command{
		Use:   "summarize [file]",
		Short: "Summarize an article at every configured level",
		Long: "Ask the language model for one summary per level (tldr through full) and write\n" +
			"them as a JSON object keyed by level name.",
		Args: cobra.MaximumNArgs(1),
		Run:  runSummarize,
	}
	cmd.Flags().StringP("out", "o", "", "Output file (default from config: summaries.json)")
	cmd.Flags().StringP("model", "m", "", "Model name")
	cmd.Flags().StringP("provider", "p", "", "Completion provider: ollama, openai, anthropic, gemini")
	cmd.Flags().Int("concurrency", 0, "Levels requested in parallel (1 = strictly sequential)")
	cmd.Flags().Bool("fail-fast", false, "Abort on the first failed level and write nothing")
	cmd.Flags().Bool("resume", false, "Reuse completed levels from the latest run of this input and model")
	cmd.Flags().Int("max-input", -1, "Condense articles longer than this many characters first (0 = unlimited)")
	cmd.Flags().Int("retries", -1, "Retries per request with exponential backoff")
	cmd.Flags().Bool("no-store", false, "Do not record the run in the run store")

	show := &cobra.Command{
		Use:   "show <file|run-id>",
		Short: "Render a summary record as markdown",
		Args:  cobra.ExactArgs(1),
		Run:   runSummariesShow,
	}
	show.Flags().StringP("level", "l", "", "Only show this level")
	show.Flags().Bool("raw", false, "Print markdown without terminal styling")

	summaries := &cobra.Command{
		Use:   "summaries",
		Short: "Inspect summary records",
	}
	summaries.AddCommand(show)

	RootCmd.AddCommand(cmd, summaries)
}

func runSummarize(cmd *cobra.Command, args []string) {
	sc := cfg.Summarize
	flags := cmd.Flags()
	if len(args) > 0 {
		sc.Input = args[0]
	}
	if v, _ := flags.GetString("out"); v != "" {
		sc.Output = v
	}
	if v, _ := flags.GetString("model"); v != "" {
		sc.Model = v
	}
	if v, _ := flags.GetString("provider"); v != "" {
		sc.Provider = v
	}
	if v, _ := flags.GetInt("concurrency"); v > 0 {
		sc.Concurrency = v
	}
	if v, _ := flags.GetInt("max-input"); v >= 0 {
		sc.MaxInputChars = v
	}
	if v, _ := flags.GetInt("retries"); v >= 0 {
		sc.Retries = v
	}
	if v, _ := flags.GetBool("fail-fast"); v {
		sc.Policy = string(summarize.PolicyFailFast)
	}
	resume, _ := flags.GetBool("resume")
	noStore, _ := flags.GetBool("no-store")

	ctx, stop := signalContext(cmd)
	defer stop()

	c, err := llm.New(ctx, sc)
	if err != nil {
		exitErr("provider", err)
	}

	var st store.Store
	if !noStore {
		s, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()
		st = s
	} else if resume {
		exitErr("summarize", errors.New("--resume needs the run store"))
	}

	opts := summarize.OptionsFromConfig(sc)
	opts.Resume = resume
	logger.Info("summarizing",
		zap.String("input", sc.Input),
		zap.String("provider", sc.Provider),
		zap.String("model", sc.Model),
		zap.Int("levels", len(opts.Levels)),
	)

	rec, err := summarize.New(c, opts, st, logger).Summarize(ctx, sc.Input, sc.Output)
	var partial *summarize.PartialError
	switch {
	case errors.As(err, &partial):
		for _, f := range partial.Failed {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", f.Level, f.Err)
		}
		if rec.Len() == 0 {
			fmt.Printf("No summaries written; %s left unchanged\n", sc.Output)
		} else {
			fmt.Printf("Wrote %d of %d summaries to %s\n", rec.Len(), partial.Total, sc.Output)
		}
		exit(1)
	case err != nil:
		exitErr("summarize", err)
	}
	fmt.Printf("Wrote %d summaries to %s\n", rec.Len(), sc.Output)
}

func runSummariesShow(cmd *cobra.Command, args []string) {
	level, _ := cmd.Flags().GetString("level")
	raw, _ := cmd.Flags().GetBool("raw")

	rec, title, err := loadRecord(cmd, args[0])
	if err != nil {
		exitErr("load record", err)
	}
	if level != "" {
		text, ok := rec.Get(level)
		if !ok {
			exitErr("show", fmt.Errorf("%w: %s", summarize.ErrUnknownLevel, level))
		}
		rec = summarize.NewRecord()
		rec.Set(level, text)
	}

	md := rec.Markdown(title)
	if raw {
		fmt.Print(md)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		exitErr("markdown renderer", err)
	}
	out, err := r.Render(md)
	if err != nil {
		exitErr("render markdown", err)
	}
	fmt.Print(out)
}

// loadRecord reads ref as a record file, falling back to a run id in the store.
func loadRecord(cmd *cobra.Command, ref string) (*summarize.Record, string, error) {
	if _, err := os.Stat(ref); err == nil {
		rec, err := summarize.ReadRecord(ref)
		return rec, filepath.Base(ref), err
	}

	s, err := openStore()
	if err != nil {
		return nil, "", err
	}
	defer s.Close()
	run, err := s.GetRun(cmd.Context(), ref)
	if err != nil {
		return nil, "", fmt.Errorf("%s is neither a file nor a run id: %w", ref, err)
	}
	return summarize.RecordFromRun(run), fmt.Sprintf("%s (%s, %s)", filepath.Base(run.Input), run.Model, run.ID), nil
}
