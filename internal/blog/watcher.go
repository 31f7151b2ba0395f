package blog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of write events editors emit when
// saving a file into a single callback invocation.
const watchDebounce = 500 * time.Millisecond

// Watch monitors the document's directory and invokes onChange after
// the document or anything under its images directory is written.
// Events are debounced. Blocks until the context is cancelled.
func (b *Blog) Watch(ctx context.Context, logger *slog.Logger, onChange func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(b.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", b.Dir, err)
	}

	// The images directory may not exist yet; ignore the error.
	_ = watcher.Add(filepath.Join(b.Dir, "images"))

	var timer *time.Timer

	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("fsnotify events channel closed")
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			// Ignore editor temp files.
			name := filepath.Base(event.Name)
			if name == "" || name[0] == '.' || name[len(name)-1] == '~' {
				continue
			}

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("fsnotify errors channel closed")
			}

			logger.Warn("watch error", slog.String("error", err.Error()))

		case <-pending:
			logger.Info("document changed", slog.String("path", b.Path))

			if err := onChange(); err != nil {
				logger.Error("sync after change failed", slog.String("error", err.Error()))
			}
		}
	}
}
