package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/ayusman/handwheel/internal/log"
)

// Watch reloads path whenever it changes and sends each valid result on the
// returned channel. Invalid files are logged and skipped. The directory is
// watched rather than the file so editors that replace the file on save are
// followed. The channel is closed when ctx is done.
func Watch(ctx context.Context, path string) (<-chan *Config, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	out := make(chan *Config, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isReload(event, path) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					log.Warn("config reload rejected", "path", path, "error", err)
					continue
				}
				log.Info("config reloaded", "path", path)
				// Only the newest config matters.
				select {
				case <-out:
				default:
				}
				out <- cfg
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("config watcher error", "error", err)
			}
		}
	}()

	return out, nil
}

// isReload reports whether event should trigger a reload of path.
func isReload(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}
