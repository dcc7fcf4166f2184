// Package config provides configuration management for palette.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths holds all the path configurations for palette.
type Paths struct {
	// ConfigDir is the directory for configuration files (~/.config/palette)
	ConfigDir string

	// DataDir is the directory for data files (~/.local/share/palette)
	DataDir string

	// CacheDir is the directory for cache files (~/.cache/palette)
	CacheDir string
}

// DefaultPaths returns the default paths based on XDG Base Directory spec.
// On Windows, it uses %APPDATA% instead.
func DefaultPaths() *Paths {
	home := homeDir()

	if runtime.GOOS == "windows" {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		localAppData := os.Getenv("LOCALAPPDATA")
		if localAppData == "" {
			localAppData = filepath.Join(home, "AppData", "Local")
		}

		return &Paths{
			ConfigDir: filepath.Join(appData, "palette"),
			DataDir:   filepath.Join(localAppData, "palette"),
			CacheDir:  filepath.Join(localAppData, "palette", "cache"),
		}
	}

	// Unix-like systems follow XDG Base Directory spec
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(home, ".local", "share")
	}

	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		cacheHome = filepath.Join(home, ".cache")
	}

	return &Paths{
		ConfigDir: filepath.Join(configHome, "palette"),
		DataDir:   filepath.Join(dataHome, "palette"),
		CacheDir:  filepath.Join(cacheHome, "palette"),
	}
}

// ConfigFile returns the path to the main configuration file.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// CatalogFile returns the path to the user's own YAML catalog.
func (p *Paths) CatalogFile() string {
	return filepath.Join(p.ConfigDir, "catalog.yaml")
}

// DatabaseFile returns the path to the SQLite catalog store.
func (p *Paths) DatabaseFile() string {
	return filepath.Join(p.DataDir, "catalog.db")
}

// PluginsDir returns the path to the plugin directory.
func (p *Paths) PluginsDir() string {
	return filepath.Join(p.DataDir, "plugins")
}

// LogDir returns the path to the log directory.
func (p *Paths) LogDir() string {
	return filepath.Join(p.CacheDir, "logs")
}

// LogFile returns the path to the log file.
func (p *Paths) LogFile() string {
	return filepath.Join(p.LogDir(), "palette.log")
}

// EnsureDirectories creates all necessary directories.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.ConfigDir,
		p.DataDir,
		p.CacheDir,
		p.LogDir(),
		p.PluginsDir(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return nil
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback
		if runtime.GOOS == "windows" {
			return os.Getenv("USERPROFILE")
		}
		return os.Getenv("HOME")
	}
	return home
}
