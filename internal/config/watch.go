// pattern: Imperative Shell

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"projdex/internal/logging"
)

// watchDebounce coalesces the burst of events editors produce on save.
const watchDebounce = 250 * time.Millisecond

// Watch reloads configPath whenever it changes and passes the new value to
// onChange. The parent directory is watched because editors usually replace
// the file rather than write it in place. Blocks until ctx is cancelled.
// Parse failures are logged and the previous config stays in effect.
func Watch(ctx context.Context, configPath string, logger *logging.ScopedLogger, onChange func(Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory: %w", err)
	}

	target := filepath.Clean(configPath)
	var debounce <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				debounce = time.After(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "error", err)

		case <-debounce:
			debounce = nil
			cfg, err := LoadFrom(configPath)
			if err != nil {
				logger.Warn("config reload failed, keeping previous config", "error", err, "path", configPath)
				continue
			}
			logger.Info("config reloaded", "path", configPath, "workspaces", len(cfg.Workspaces))
			onChange(cfg)
		}
	}
}
