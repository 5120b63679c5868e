package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/scratchpad/internal/siteindex"
)

func init() {
	index := &cobra.Command{
		Use:   "index [dir]",
		Short: "Build the HTML index page for a directory",
		Long:  "List every page in the directory, newest first, in a single index.html.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runIndex,
	}
	index.Flags().StringP("out", "o", "", "Output file (default from config: index.html)")
	index.Flags().BoolP("watch", "w", false, "Rebuild whenever a page changes")

	serve := &cobra.Command{
		Use:   "serve [dir]",
		Short: "Preview the directory over HTTP",
		Args:  cobra.MaximumNArgs(1),
		Run:   runServe,
	}
	serve.Flags().String("addr", "", "Listen address (default from config: :8080)")
	serve.Flags().BoolP("watch", "w", false, "Rebuild the index whenever a page changes")

	RootCmd.AddCommand(index, serve)
}

func indexOptions(cmd *cobra.Command, args []string) siteindex.Options {
	opts := siteindex.OptionsFromConfig(cfg.Index)
	if len(args) > 0 {
		opts.Dir = args[0]
	}
	if cmd.Flags().Lookup("out") != nil {
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			opts.Output = out
		}
	}
	return opts
}

// reportBuild prints the outcome of one index build.
func reportBuild(res *siteindex.Result, err error) {
	switch {
	case errors.Is(err, siteindex.ErrNoEntries):
		fmt.Println("No HTML files found to index.")
	case err != nil:
		fmt.Fprintf(os.Stderr, "error: build index: %v\n", err)
	default:
		for _, f := range res.Failures {
			fmt.Fprintf(os.Stderr, "warning: %s: %v (using filename as title)\n", f.Name, f.Err)
		}
		fmt.Printf("Index page built successfully with %d experiments\n", len(res.Entries))
	}
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func runIndex(cmd *cobra.Command, args []string) {
	opts := indexOptions(cmd, args)
	watch, _ := cmd.Flags().GetBool("watch")

	res, err := siteindex.Build(opts, logger)
	reportBuild(res, err)
	if err != nil && !errors.Is(err, siteindex.ErrNoEntries) {
		exit(1)
	}
	if !watch {
		return
	}

	ctx, stop := signalContext(cmd)
	defer stop()
	if err := siteindex.NewWatcher(opts, logger, reportBuild).Run(ctx); err != nil {
		exitErr("watch", err)
	}
}

func runServe(cmd *cobra.Command, args []string) {
	opts := indexOptions(cmd, args)
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.Index.Addr
	}
	watch, _ := cmd.Flags().GetBool("watch")

	reportBuild(siteindex.Build(opts, logger))

	ctx, stop := signalContext(cmd)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return siteindex.NewServer(opts, logger).ListenAndServe(gctx, addr)
	})
	if watch {
		g.Go(func() error {
			return siteindex.NewWatcher(opts, logger, reportBuild).Run(gctx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		exitErr("serve", err)
	}
}
