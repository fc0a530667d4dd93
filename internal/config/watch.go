package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Garsondee/Pursuit-Sense/internal/logging"
)

const defaultDebounce = 150 * time.Millisecond

// Watch reloads path whenever it changes and calls fn with each version that
// validates. Invalid edits are logged and skipped. The parent directory is
// watched so editors that replace the file by rename are handled. Watch
// blocks until ctx is done.
func Watch(ctx context.Context, path string, log logging.Logger, fn func(*Config)) error {
	return watch(ctx, path, defaultDebounce, logging.OrNop(log), fn)
}

func watch(ctx context.Context, path string, debounce time.Duration, log logging.Logger, fn func(*Config)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("config watcher error", "path", abs, "err", err)
		case <-timer.C:
			cfg, err := Load(abs)
			if err != nil {
				log.Warn("config reload rejected", "path", abs, "err", err)
				continue
			}
			log.Info("config reloaded", "path", abs)
			fn(cfg)
		}
	}
}
