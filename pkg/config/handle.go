package config

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/zkmarket/broker/pkg/log"
)

// Handle is a shared, reloadable view of the configuration. Components hold a
// *Handle and call Snapshot for each decision so a hot reload takes effect on
// the next iteration.
type Handle struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewHandle wraps a loaded config.
func NewHandle(cfg *Config) *Handle {
	return &Handle{cfg: cfg}
}

// Snapshot returns the current configuration. The returned value must be
// treated as read-only.
func (h *Handle) Snapshot() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Replace swaps in a new configuration.
func (h *Handle) Replace(cfg *Config) {
	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()
}

// Watch reloads the config file whenever it changes on disk, until ctx is
// cancelled. Invalid files are logged and skipped; the previous config stays
// in effect.
func (h *Handle) Watch(ctx context.Context) error {
	logger := log.WithComponent("config")

	path := h.Snapshot().ConfigFilePath()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return err
	}
	logger.Info().Str("path", path).Msg("watching config file")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				cfg, err := LoadFile(path)
				if err != nil {
					logger.Error().Err(err).Msg("config reload failed, keeping previous config")
					continue
				}
				h.Replace(cfg)
				logger.Info().Msg("config reloaded")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("config watcher error")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
