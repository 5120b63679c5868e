package siteindex

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/rcliao/scratchpad/internal/logging"
)

// DefaultDebounce batches the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher rebuilds the index whenever a listed page changes.
type Watcher struct {
	opts     Options
	log      *zap.Logger
	debounce time.Duration
	onBuild  func(*Result, error)
}

// NewWatcher returns a watcher for opts.Dir. onBuild is called after every rebuild.
func NewWatcher(opts Options, log *zap.Logger, onBuild func(*Result, error)) *Watcher {
	if onBuild == nil {
		onBuild = func(*Result, error) {}
	}
	return &Watcher{
		opts:     opts,
		log:      logging.OrNop(log).Named("watch"),
		debounce: DefaultDebounce,
		onBuild:  onBuild,
	}
}

// SetDebounce overrides the quiet period before a rebuild.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

// Run blocks until ctx is cancelled. It closes the underlying fsnotify watcher before
// returning.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.opts.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.opts.Dir, err)
	}
	w.log.Info("watching for changes", zap.String("dir", w.opts.Dir))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("change detected", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", zap.Error(err))

		case <-timer.C:
			pending = false
			res, err := Build(w.opts, w.log)
			w.onBuild(res, err)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	return w.opts.Matches(filepath.Base(event.Name))
}
