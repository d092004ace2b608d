package levels

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates cached levels when their files change on disk. A change
// to levels.yaml refreshes everything. It blocks until ctx is done.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(m.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", m.dir, err)
	}
	m.logger.Info("watching levels directory", "dir", m.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			m.handleEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			m.logger.Warn("level watcher error", "error", err)
		}
	}
}

func (m *Manager) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	name := filepath.Base(event.Name)
	switch {
	case name == manifestFile:
		if err := m.Refresh(); err != nil {
			m.logger.Warn("failed to reload manifest", "error", err)
			return
		}
		m.logger.Info("level manifest reloaded")
	case strings.HasSuffix(name, levelExt):
		id := strings.TrimSuffix(name, levelExt)
		m.Invalidate(id)
		m.logger.Debug("level invalidated", "id", id, "op", event.Op.String())
	}
}
