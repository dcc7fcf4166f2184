package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/runger/palette/internal/action"
	"github.com/runger/palette/internal/config"
	"github.com/runger/palette/internal/lookups"
	plog "github.com/runger/palette/internal/log"
	"github.com/runger/palette/internal/modules/calc"
	"github.com/runger/palette/internal/modules/catalog"
	"github.com/runger/palette/internal/modules/coords"
	"github.com/runger/palette/internal/modules/plugins"
	"github.com/runger/palette/internal/normalize"
	"github.com/runger/palette/internal/search"
	"github.com/runger/palette/internal/storage"
)

// storeSource names the catalog items loaded from the database in logs.
const storeSource = "store"

// AppOptions configures NewApp.
type AppOptions struct {
	// ConfigPath is re-read by Reload. Defaults to the standard config file.
	ConfigPath string
	Paths      *config.Paths
	Logger     *slog.Logger
	Executor   action.Executor
	// Store overrides the catalog database opened from configuration.
	Store storage.Store
}

// App holds one fully wired palette: modules, lookups, history and the
// root lookup that switches between them.
type App struct {
	Root    *search.Root
	State   *search.State
	History *search.History

	cfg        *config.Config
	configPath string
	paths      *config.Paths
	logger     *slog.Logger
	exec       action.Executor
	normalizer *normalize.Normalizer

	store     storage.Store
	ownsStore bool
	catalog   *catalog.Module
	plugins   *plugins.Module
	coords    *coords.Module
	agg       *search.AggregateLookup
	web       *lookups.WebLookup
	modules   []search.Module
}

// NewApp builds the palette described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, opts AppOptions) (*App, error) {
	paths := opts.Paths
	if paths == nil {
		paths = config.DefaultPaths()
	}
	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = paths.ConfigFile()
	}
	logger := opts.Logger
	if logger == nil {
		logger = plog.Discard()
	}
	exec := opts.Executor
	if exec == nil {
		exec = action.NewSystem(action.SystemConfig{Logger: logger})
	}

	a := &App{
		cfg:        cfg,
		configPath: configPath,
		paths:      paths,
		logger:     logger,
		exec:       exec,
		normalizer: normalize.New(),
		store:      opts.Store,
	}

	if a.store == nil && cfg.Catalog.UseStore {
		st, err := storage.NewSQLiteStore(a.databasePath())
		if err != nil {
			plog.LogCatalogLoadFailed(logger, storeSource, err)
		} else {
			a.store = st
			a.ownsStore = true
		}
	}

	cat, err := catalog.New(catalog.Config{
		Name:      config.ModuleCatalog,
		Source:    a.loadCatalog(ctx),
		Executor:  exec,
		CacheSize: cfg.Catalog.CacheSize,
		Logger:    logger,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create catalog module: %w", err)
	}
	a.catalog = cat

	a.plugins = plugins.New(&plugins.FSDirectory{Root: a.pluginsDir(), Executor: exec}, logger)

	a.coords = coords.New(coords.Config{Places: cfg.Coords.Places, Command: cfg.Coords.Command, Executor: exec})

	a.modules = []search.Module{
		cat,
		calc.New(exec),
		a.coords,
		a.plugins,
	}

	a.History = search.NewHistory(nil)
	a.agg = search.NewAggregateLookup(search.AggregateConfig{
		Modules:        a.modules,
		Settings:       a.moduleSettings,
		Normalizer:     a.normalizer,
		History:        a.History,
		HistoryEnabled: func() bool { return a.cfg.Search.HistoryEnabled },
		Hints:          cfg.Search.Hints,
		Logger:         logger,
	})
	a.web = lookups.NewWebLookup(cfg.Sites(), exec, a.normalizer, logger)

	root, err := search.NewRoot(search.ModeDefault, map[search.Mode]search.Lookup{
		search.ModeDefault:   a.agg,
		search.ModeWebSearch: a.web,
	}, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Root = root
	a.History.SetReplayer(root)
	a.State = search.NewState(a.normalizer, a.searchSettings)

	return a, nil
}

// Config returns the active configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// ModuleNames lists the modules in registration order.
func (a *App) ModuleNames() []string {
	names := make([]string, len(a.modules))
	for i, m := range a.modules {
		names[i] = m.Name()
	}
	return names
}

// CatalogSize returns the number of loaded catalog items.
func (a *App) CatalogSize() int {
	return a.catalog.Len()
}

// Query parses raw for the current input mode and looks it up.
func (a *App) Query(raw string) search.LookupResult {
	c := a.State.Set(a.Root.InputMode(), raw)
	return a.Root.Lookup(c)
}

// Select tells the active lookup about r and runs it.
func (a *App) Select(r search.Result) error {
	a.Root.OnSelected(a.State.Current(), r)
	return r.Select(a.Root)
}

// Reload re-reads the configuration file and applies it. On error the
// previous configuration stays active.
func (a *App) Reload() error {
	cfg, err := config.LoadFromFile(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.web.SetSites(cfg.Sites())
	a.agg.SetHints(cfg.Search.Hints)
	a.coords.SetPlaces(cfg.Coords.Places)
	a.coords.SetCommand(cfg.Coords.Command)
	a.catalog.SetSource(a.loadCatalog(context.Background()))
	if err := a.plugins.Refresh(); err != nil {
		a.logger.Warn("app: plugin refresh failed", "error", err)
	}
	return nil
}

// Close releases the catalog database when the app opened it.
func (a *App) Close() error {
	if a.ownsStore && a.store != nil {
		err := a.store.Close()
		a.store = nil
		return err
	}
	return nil
}

func (a *App) searchSettings() search.Settings {
	return a.cfg.SearchSettings()
}

func (a *App) moduleSettings(name string) search.ModuleSettings {
	return a.cfg.ModuleSettings(name)
}

func (a *App) databasePath() string {
	if a.cfg.Catalog.DBPath != "" {
		return a.cfg.Catalog.DBPath
	}
	return a.paths.DatabaseFile()
}

func (a *App) pluginsDir() string {
	if a.cfg.Plugins.Dir != "" {
		return a.cfg.Plugins.Dir
	}
	return a.paths.PluginsDir()
}

// loadCatalog merges the user's catalog file, the configured catalog files
// and the imported items. Unreadable sources are logged and skipped.
func (a *App) loadCatalog(ctx context.Context) catalog.StaticSource {
	var items catalog.StaticSource

	files := append([]string{a.paths.CatalogFile()}, a.cfg.Catalog.Files...)
	for i, path := range files {
		src, err := catalog.LoadFile(path)
		if err != nil {
			// The default catalog file is optional.
			if i == 0 && errors.Is(err, os.ErrNotExist) {
				continue
			}
			plog.LogCatalogLoadFailed(a.logger, path, err)
			continue
		}
		items = append(items, src...)
	}

	if a.store != nil {
		src, err := storage.LoadCatalog(ctx, a.store)
		if err != nil {
			plog.LogCatalogLoadFailed(a.logger, storeSource, err)
		} else {
			items = append(items, src...)
		}
	}
	return items
}
