// Package cli implements the scratchpad CLI commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/scratchpad/internal/config"
	"github.com/rcliao/scratchpad/internal/logging"
	"github.com/rcliao/scratchpad/internal/store"
)

var (
	cfgPath string
	dbPath  string
	verbose bool

	cfg    *config.Config
	logger *zap.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "scratchpad",
	Short: "Experiment tooling: animation scenes, page index, leveled summaries",
	Long: "A single binary for the experiments repository: render animation choreographies,\n" +
		"build the HTML index page, and summarize articles at ten levels of detail.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = c

		l, err := logging.New(verbose, cfg.Log.JSON)
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("config loaded", zap.String("path", cfgPath))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", config.DefaultPath, "Config file (missing file uses defaults)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Run store path (default: $SCRATCHPAD_DB or ~/.scratchpad/runs.db)")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if cfg != nil && cfg.Store.Path != "" {
		return cfg.Store.Path
	}
	if env := os.Getenv("SCRATCHPAD_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".scratchpad", "runs.db")
}

func openStore() (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath())
}

// osExit is replaced in tests.
var osExit = os.Exit

// exit flushes the logger before terminating; deferred calls do not run.
func exit(code int) {
	if logger != nil {
		_ = logger.Sync()
	}
	osExit(code)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	exit(1)
}
