package picker

import (
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// ConfigWatcher reports changes to a single configuration file.
type ConfigWatcher struct {
	w    *fsnotify.Watcher
	name string
}

// WatchConfig watches the directory holding path and reports changes to
// path only. Editors often replace files on save, so the directory is watched
// instead of the file.
func WatchConfig(path string) (*ConfigWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &ConfigWatcher{w: w, name: filepath.Clean(path)}, nil
}

// Close stops watching.
func (c *ConfigWatcher) Close() error {
	return c.w.Close()
}

// relevant reports whether ev changed the watched file's content.
func (c *ConfigWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != c.name {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

// waitForChange blocks until the watched file changes. It returns nil once
// the watcher is closed.
func waitForChange(c *ConfigWatcher) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-c.w.Events:
				if !ok {
					return nil
				}
				if c.relevant(ev) {
					return configChangedMsg{}
				}
			case err, ok := <-c.w.Errors:
				if !ok {
					return nil
				}
				return configChangedMsg{err: err}
			}
		}
	}
}
