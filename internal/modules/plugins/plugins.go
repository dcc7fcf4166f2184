// Package plugins provides the palette module that opens the main and
// settings windows of installed plugins.
package plugins

import (
	"fmt"
	"log/slog"

	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/normalize"
	"github.com/runger/palette/internal/search"
)

// UI selects which plugin window to open.
type UI int

const (
	MainUI UI = iota
	SettingsUI
)

func (u UI) String() string {
	if u == SettingsUI {
		return "settings"
	}
	return "main"
}

// PluginInfo describes one installed plugin.
type PluginInfo struct {
	Name          string
	HasSettingsUI bool
	HasMainUI     bool
}

// Directory lists installed plugins and opens their windows.
type Directory interface {
	ListInstalled() ([]PluginInfo, error)
	Open(name string, ui UI) error
}

// Module searches installed plugins. The plugin list is read once and kept
// until Refresh.
type Module struct {
	dir    Directory
	logger *slog.Logger

	plugins []PluginInfo
	loaded  bool
}

// New creates a plugins module over dir.
func New(dir Directory, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.Default()
	}
	return &Module{dir: dir, logger: logger}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "plugins"
}

// Refresh re-reads the installed plugin list.
func (m *Module) Refresh() error {
	list, err := m.dir.ListInstalled()
	if err != nil {
		return fmt.Errorf("listing plugins: %w", err)
	}
	m.plugins = list
	m.loaded = true
	return nil
}

// Search offers the main and settings windows of every matching plugin.
func (m *Module) Search(ctx *search.Context, mt *fuzzy.Matcher, n *normalize.Normalizer) error {
	if !m.loaded {
		if err := m.Refresh(); err != nil {
			return err
		}
	}

	fold := ctx.Criteria.ContainsKana
	settings := normalize.SearchableASCII(SettingsUI.String())
	for _, p := range m.plugins {
		if ctx.OverLimit() {
			break
		}
		name := n.Searchable(p.Name, fold)
		if p.HasMainUI {
			if raw := mt.Matches(name); raw > 0 {
				ctx.AddResult(&Result{dir: m.dir, plugin: p.Name, ui: MainUI, score: ctx.Weighted(raw)})
			}
		}
		if p.HasSettingsUI {
			// Settings also match on their label and rank just below the
			// main window, never below 1.
			if raw := mt.Matches(name + " " + settings); raw > 0 {
				score := max(ctx.Weighted(raw)-1, 1)
				ctx.AddResult(&Result{dir: m.dir, plugin: p.Name, ui: SettingsUI, score: score})
			}
		}
	}
	return nil
}

// Result opens one plugin window.
type Result struct {
	dir    Directory
	plugin string
	ui     UI
	score  int
}

func (r *Result) Category() string { return "Plugin" }
func (r *Result) Score() int { return r.score }
func (r *Result) Key() string { return r.plugin + "#" + r.ui.String() }
func (r *Result) CloseOnSelect() bool { return true }

// Name renders the window the result opens.
func (r *Result) Name() string {
	if r.ui == SettingsUI {
		return r.plugin + " settings"
	}
	return r.plugin
}

// Select opens the window.
func (r *Result) Select(search.Navigator) error {
	if err := r.dir.Open(r.plugin, r.ui); err != nil {
		return fmt.Errorf("opening %s %s: %w", r.plugin, r.ui, err)
	}
	return nil
}
