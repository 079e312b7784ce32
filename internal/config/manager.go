package config

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Manager owns the live configuration and its hot-reload loop. A reload is
// all-or-nothing: the candidate catalog is offered to every subscriber (the
// provider registry among them) before the atomic swap, and a rejection from
// any subscriber keeps the current configuration, so the served config and
// the registered model set never disagree.
type Manager struct {
	config   atomic.Pointer[Config]
	path     string
	watcher  *fsnotify.Watcher
	onReload []func(*Config) error
	logger   *slog.Logger
}

// NewManager loads the configuration file and returns a manager serving it.
func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		path:   path,
		logger: logger,
	}
	m.config.Store(cfg)

	return m, nil
}

// Get returns the current configuration.
// This is safe to call concurrently from multiple goroutines.
func (m *Manager) Get() *Config {
	return m.config.Load()
}

// OnReload registers a subscriber consulted on every reload, in registration
// order. A subscriber returning an error vetoes the reload. Register all
// subscribers before calling Watch.
func (m *Manager) OnReload(fn func(*Config) error) {
	m.onReload = append(m.onReload, fn)
}

// Reload re-reads the configuration file, offers the result to every
// subscriber, and swaps it in if all of them accept. On any failure the
// current configuration stays in effect.
func (m *Manager) Reload() error {
	next, err := LoadFromFile(m.path)
	if err != nil {
		return fmt.Errorf("reload config: %w", err)
	}

	for _, fn := range m.onReload {
		if err := fn(next); err != nil {
			return fmt.Errorf("reload rejected: %w", err)
		}
	}

	m.config.Store(next)
	m.logger.Info("configuration reloaded", "models", len(next.Models))
	return nil
}

// Watch starts watching the configuration file for changes. Rapid change
// bursts are debounced into a single reload attempt; a failed attempt is
// logged and the current configuration kept.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	m.watcher = watcher

	if err := watcher.Add(m.path); err != nil {
		_ = watcher.Close()
		return err
	}

	go m.watchLoop(ctx)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context) {
	const debounceDelay = 500 * time.Millisecond
	var debounceTimer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			_ = m.watcher.Close()
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDelay, func() {
					if err := m.Reload(); err != nil {
						m.logger.Error("keeping current configuration", "error", err)
					}
				})
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error("config watcher error", "error", err)
		}
	}
}

// Close stops the configuration watcher.
func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}
