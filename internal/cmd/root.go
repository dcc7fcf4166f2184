package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/runger/palette/internal/config"
	plog "github.com/runger/palette/internal/log"
	"github.com/runger/palette/internal/picker"
	"github.com/runger/palette/internal/search"
)

// Command groups shown in help output.
const (
	groupCore  = "core"
	groupSetup = "setup"
)

var (
	configPath string
	startQuery string
	startWeb   bool
	noWatch    bool
)

var rootCmd = &cobra.Command{
	Use:   "palette",
	Short: "a keyboard-driven command palette",
	Long: `palette - a keyboard-driven command palette
  - type to fuzzy-search commands, items, plugins and places
  - =1+2 to calculate, ?query to search the web`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPalette,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupCore, Title: "Core Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: XDG config dir)")
	rootCmd.Flags().StringVarP(&startQuery, "query", "q", "", "initial query")
	rootCmd.Flags().BoolVar(&startWeb, "web", false, "start in web search mode")
	rootCmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when the config file changes")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the --config file or the default one.
func loadConfig() (*config.Config, *config.Paths, string, error) {
	paths := config.DefaultPaths()
	path := configPath
	if path == "" {
		path = paths.ConfigFile()
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return nil, nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, paths, path, nil
}

// newLogger writes JSON lines to the configured log file. The terminal
// belongs to the palette, so nothing is logged to stderr.
func newLogger(cfg *config.Config, paths *config.Paths) (*slog.Logger, io.Closer) {
	path := cfg.Log.File
	if path == "" {
		path = paths.LogFile()
	}
	f, err := plog.OpenFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "palette: logging disabled: %v\n", err)
		return plog.Discard(), io.NopCloser(nil)
	}
	return plog.New(&plog.Config{Output: f, Level: plog.ParseLevel(cfg.Log.Level)}), f
}

func runPalette(cmd *cobra.Command, args []string) error {
	cfg, paths, path, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closer := newLogger(cfg, paths)
	defer closer.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := NewApp(ctx, cfg, AppOptions{ConfigPath: path, Paths: paths, Logger: logger})
	if err != nil {
		return err
	}
	defer app.Close()

	plog.LogStartup(logger, plog.StartupInfo{
		Version:      Version,
		ConfigPath:   path,
		DatabasePath: app.databasePath(),
		Modules:      app.ModuleNames(),
		CatalogItems: app.CatalogSize(),
		PID:          os.Getpid(),
	})

	if startWeb {
		if err := app.Root.SetBase(search.ModeWebSearch); err != nil {
			return err
		}
	}

	opts := picker.Options{
		Root:     app.Root,
		State:    app.State,
		Query:    startQuery,
		Debounce: picker.DefaultDebounce,
		Reload:   app.Reload,
		Logger:   logger,
	}
	if !noWatch {
		w, err := picker.WatchConfig(path)
		if err != nil {
			logger.Warn("palette: config reload disabled", "error", err)
		} else {
			defer w.Close()
			opts.Watcher = w
		}
	}

	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).ColorProfile())

	p := tea.NewProgram(picker.NewModel(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("palette: TUI error: %w", err)
	}
	return nil
}
