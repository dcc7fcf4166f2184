// Package log provides JSON-lines structured logging for palette.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Config configures the structured logger.
type Config struct {
	// Output is the writer for log output (default: os.Stderr)
	Output io.Writer

	// Level is the minimum log level (default: LevelInfo)
	Level slog.Level

	// Debug enables debug level logging (overrides Level)
	Debug bool
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		Output: os.Stderr,
		Level:  slog.LevelInfo,
		Debug:  false,
	}
}

// New creates a new JSON-lines structured logger. Lines look like:
//
//	{"ts":"2026-01-15T10:30:00Z","level":"INFO","msg":"palette started","version":"1.2.0"}
//
// Log levels:
//   - debug: Verbose (enabled via PALETTE_DEBUG=1)
//   - info: Startup, config reload, selections
//   - warn: Non-fatal issues (module failures, unreadable catalogs)
//   - error: Issues requiring attention
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	level := cfg.Level
	if cfg.Debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Key = "ts"
			}
			return a
		},
	}

	return slog.New(slog.NewJSONHandler(output, opts))
}

// NewFromEnv creates a logger configured from environment variables.
// PALETTE_DEBUG=1 enables debug logging.
func NewFromEnv() *slog.Logger {
	cfg := DefaultConfig()
	if os.Getenv("PALETTE_DEBUG") == "1" {
		cfg.Debug = true
	}
	return New(cfg)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// ParseLevel converts a config level name into a slog level.
// Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// OpenFile opens path for appending log lines, creating parent directories.
// The interactive palette owns the terminal, so it logs to a file.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// StartupInfo holds information to log when a palette session starts.
type StartupInfo struct {
	Version      string
	ConfigPath   string
	DatabasePath string
	Modules      []string
	CatalogItems int
	PID          int
}

// LogStartup logs session startup information.
func LogStartup(logger *slog.Logger, info StartupInfo) {
	logger.Info("palette started",
		"version", info.Version,
		"config_path", info.ConfigPath,
		"database_path", info.DatabasePath,
		"modules", info.Modules,
		"catalog_items", info.CatalogItems,
		"pid", info.PID,
	)
}

// LogConfigReload logs configuration reload.
func LogConfigReload(logger *slog.Logger, configPath string) {
	logger.Info("configuration reloaded", "config_path", configPath)
}

// LogConfigReloadFailed logs a reload that kept the previous configuration.
func LogConfigReloadFailed(logger *slog.Logger, configPath string, err error) {
	logger.Warn("configuration reload failed, keeping previous settings",
		"config_path", configPath,
		"error", err,
	)
}

// LogSelection logs a selected result.
func LogSelection(logger *slog.Logger, mode, category, name string) {
	logger.Debug("result selected", "mode", mode, "category", category, "name", name)
}

// LogSelectFailed logs a result whose action failed.
func LogSelectFailed(logger *slog.Logger, category, name string, err error) {
	logger.Error("result action failed",
		"category", category,
		"name", name,
		"error", err,
	)
}

// LogCatalogLoadFailed logs a catalog source that could not be read.
func LogCatalogLoadFailed(logger *slog.Logger, source string, err error) {
	logger.Warn("catalog source unavailable", "source", source, "error", err)
}
