package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/lookups"
	"github.com/runger/palette/internal/search"
)

// Module names known to the default configuration.
const (
	ModuleCatalog = "catalog"
	ModuleCalc    = "calc"
	ModuleCoords  = "coords"
	ModulePlugins = "plugins"
)

// Config represents the palette configuration.
type Config struct {
	Search  SearchConfig            `yaml:"search"`
	Modules map[string]ModuleConfig `yaml:"modules"`
	Web     WebConfig               `yaml:"web"`
	Catalog CatalogConfig           `yaml:"catalog"`
	Coords  CoordsConfig            `yaml:"coords"`
	Plugins PluginsConfig           `yaml:"plugins"`
	Log     LogConfig               `yaml:"log"`
}

// SearchConfig holds query parsing and empty-query settings.
type SearchConfig struct {
	MatchMode       string   `yaml:"match_mode"`        // simple, fuzzy, or fuzzy_parts
	SimpleSigil     string   `yaml:"simple_sigil"`      // Leading character forcing simple matching ("" = off)
	FuzzySigil      string   `yaml:"fuzzy_sigil"`       // Leading character forcing fuzzy matching ("" = off)
	FuzzyPartsSigil string   `yaml:"fuzzy_parts_sigil"` // Leading character forcing fuzzy_parts matching ("" = off)
	SwitchSigil     string   `yaml:"switch_sigil"`      // Leading character switching to switch_mode ("" = off)
	SwitchMode      string   `yaml:"switch_mode"`       // Lookup mode entered by switch_sigil
	HistoryEnabled  bool     `yaml:"history_enabled"`   // Show recent selections for an empty query
	Hints           []string `yaml:"hints"`             // Rotating tips for an empty query
}

// ModuleConfig holds per-module settings.
type ModuleConfig struct {
	Enabled bool `yaml:"enabled"`
	Weight  int  `yaml:"weight"` // Score multiplier, 100 = neutral
	Order   int  `yaml:"order"`  // Lower runs first
}

// SiteConfig is one web search destination.
type SiteConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"` // %s is replaced by the escaped query
}

// WebConfig holds web lookup settings.
type WebConfig struct {
	Sites []SiteConfig `yaml:"sites"`
}

// CatalogConfig holds catalog module settings.
type CatalogConfig struct {
	Files     []string `yaml:"files"`      // YAML catalogs loaded at startup
	UseStore  bool     `yaml:"use_store"`  // Also load items imported into the database
	DBPath    string   `yaml:"db_path"`    // Database path (overrides default)
	CacheSize int      `yaml:"cache_size"` // Searchable-form cache entries
}

// CoordsConfig holds coordinates module settings.
type CoordsConfig struct {
	Places  []string `yaml:"places"`
	Command string   `yaml:"command"` // {place}, {x} and {y} are replaced
}

// PluginsConfig holds plugin discovery settings.
type PluginsConfig struct {
	Dir string `yaml:"dir"` // Plugin directory (overrides default)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path (overrides default)
}

// SwitchModes are the modes the switch sigil may enter. Other modes have no
// lookup until a result enters them.
var SwitchModes = []search.Mode{search.ModeWebSearch}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			MatchMode:       fuzzy.Fuzzy.String(),
			SimpleSigil:     "'",
			FuzzySigil:      "~",
			FuzzyPartsSigil: "+",
			SwitchSigil:     "?",
			SwitchMode:      search.ModeWebSearch.String(),
			HistoryEnabled:  true,
			Hints: []string{
				"Start with ? to search the web",
				"Start with = to calculate",
				"Start with ' to match text literally",
				"Start with + to match every word separately",
			},
		},
		Modules: DefaultModules(),
		Web: WebConfig{
			Sites: []SiteConfig{
				{Name: "DuckDuckGo", URL: "https://duckduckgo.com/?q=%s"},
				{Name: "Wikipedia", URL: "https://en.wikipedia.org/w/index.php?search=%s"},
			},
		},
		Catalog: CatalogConfig{
			UseStore:  true,
			CacheSize: 4096,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultModules returns the default per-module settings.
func DefaultModules() map[string]ModuleConfig {
	return map[string]ModuleConfig{
		ModuleCatalog: {Enabled: true, Weight: 100, Order: 0},
		ModuleCalc:    {Enabled: true, Weight: 100, Order: 1},
		ModuleCoords:  {Enabled: true, Weight: 100, Order: 2},
		ModulePlugins: {Enabled: true, Weight: 100, Order: 3},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Modules missing from the file keep their defaults.
	for name, mc := range DefaultModules() {
		if _, ok := cfg.Modules[name]; !ok {
			if cfg.Modules == nil {
				cfg.Modules = make(map[string]ModuleConfig)
			}
			cfg.Modules[name] = mc
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	// Derive directory from path and ensure it exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by dot-separated key.
// For example: "search.match_mode" or "modules.calc.weight"
func (c *Config) Get(key string) (string, error) {
	parts := strings.Split(key, ".")
	if parts[0] == "modules" {
		if len(parts) != 3 {
			return "", errors.New("module key must be in format 'modules.name.key'")
		}
		return c.getModuleField(parts[1], parts[2])
	}
	if len(parts) != 2 {
		return "", errors.New("key must be in format 'section.key'")
	}

	section, field := parts[0], parts[1]

	switch section {
	case "search":
		return c.getSearchField(field)
	case "catalog":
		return c.getCatalogField(field)
	case "coords":
		return c.getCoordsField(field)
	case "plugins":
		return c.getPluginsField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	parts := strings.Split(key, ".")
	if parts[0] == "modules" {
		if len(parts) != 3 {
			return errors.New("module key must be in format 'modules.name.key'")
		}
		return c.setModuleField(parts[1], parts[2], value)
	}
	if len(parts) != 2 {
		return errors.New("key must be in format 'section.key'")
	}

	section, field := parts[0], parts[1]

	switch section {
	case "search":
		return c.setSearchField(field, value)
	case "catalog":
		return c.setCatalogField(field, value)
	case "coords":
		return c.setCoordsField(field, value)
	case "plugins":
		return c.setPluginsField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func (c *Config) getSearchField(field string) (string, error) {
	switch field {
	case "match_mode":
		return c.Search.MatchMode, nil
	case "simple_sigil":
		return c.Search.SimpleSigil, nil
	case "fuzzy_sigil":
		return c.Search.FuzzySigil, nil
	case "fuzzy_parts_sigil":
		return c.Search.FuzzyPartsSigil, nil
	case "switch_sigil":
		return c.Search.SwitchSigil, nil
	case "switch_mode":
		return c.Search.SwitchMode, nil
	case "history_enabled":
		return strconv.FormatBool(c.Search.HistoryEnabled), nil
	default:
		return "", fmt.Errorf("unknown field: search.%s", field)
	}
}

func (c *Config) setSearchField(field, value string) error {
	switch field {
	case "match_mode":
		if _, err := fuzzy.ParseMode(value); err != nil {
			return fmt.Errorf("invalid match_mode: %w", err)
		}
		c.Search.MatchMode = value
	case "simple_sigil", "fuzzy_sigil", "fuzzy_parts_sigil", "switch_sigil":
		if !isValidSigil(value) {
			return fmt.Errorf("invalid %s: %q (must be a single character or empty)", field, value)
		}
		switch field {
		case "simple_sigil":
			c.Search.SimpleSigil = value
		case "fuzzy_sigil":
			c.Search.FuzzySigil = value
		case "fuzzy_parts_sigil":
			c.Search.FuzzyPartsSigil = value
		default:
			c.Search.SwitchSigil = value
		}
	case "switch_mode":
		if _, err := parseSwitchMode(value); err != nil {
			return fmt.Errorf("invalid switch_mode: %w", err)
		}
		c.Search.SwitchMode = value
	case "history_enabled":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for history_enabled: %w", err)
		}
		c.Search.HistoryEnabled = v
	default:
		return fmt.Errorf("unknown field: search.%s", field)
	}
	return nil
}

func (c *Config) getModuleField(name, field string) (string, error) {
	mc, ok := c.Modules[name]
	if !ok {
		return "", fmt.Errorf("unknown module: %s", name)
	}
	switch field {
	case "enabled":
		return strconv.FormatBool(mc.Enabled), nil
	case "weight":
		return strconv.Itoa(mc.Weight), nil
	case "order":
		return strconv.Itoa(mc.Order), nil
	default:
		return "", fmt.Errorf("unknown field: modules.%s.%s", name, field)
	}
}

func (c *Config) setModuleField(name, field, value string) error {
	mc, ok := c.Modules[name]
	if !ok {
		return fmt.Errorf("unknown module: %s", name)
	}
	switch field {
	case "enabled":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for enabled: %w", err)
		}
		mc.Enabled = v
	case "weight":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for weight: %w", err)
		}
		if v <= 0 {
			return fmt.Errorf("invalid value for weight: %d (must be > 0)", v)
		}
		mc.Weight = v
	case "order":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for order: %w", err)
		}
		mc.Order = v
	default:
		return fmt.Errorf("unknown field: modules.%s.%s", name, field)
	}
	c.Modules[name] = mc
	return nil
}

func (c *Config) getCatalogField(field string) (string, error) {
	switch field {
	case "use_store":
		return strconv.FormatBool(c.Catalog.UseStore), nil
	case "db_path":
		return c.Catalog.DBPath, nil
	case "cache_size":
		return strconv.Itoa(c.Catalog.CacheSize), nil
	case "files":
		return strings.Join(c.Catalog.Files, ","), nil
	default:
		return "", fmt.Errorf("unknown field: catalog.%s", field)
	}
}

func (c *Config) setCatalogField(field, value string) error {
	switch field {
	case "use_store":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for use_store: %w", err)
		}
		c.Catalog.UseStore = v
	case "db_path":
		c.Catalog.DBPath = value
	case "cache_size":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for cache_size: %w", err)
		}
		if v < 1 {
			v = 1
		}
		c.Catalog.CacheSize = v
	case "files":
		c.Catalog.Files = splitList(value)
	default:
		return fmt.Errorf("unknown field: catalog.%s", field)
	}
	return nil
}

func (c *Config) getCoordsField(field string) (string, error) {
	switch field {
	case "command":
		return c.Coords.Command, nil
	case "places":
		return strings.Join(c.Coords.Places, ","), nil
	default:
		return "", fmt.Errorf("unknown field: coords.%s", field)
	}
}

func (c *Config) setCoordsField(field, value string) error {
	switch field {
	case "command":
		c.Coords.Command = value
	case "places":
		c.Coords.Places = splitList(value)
	default:
		return fmt.Errorf("unknown field: coords.%s", field)
	}
	return nil
}

func (c *Config) getPluginsField(field string) (string, error) {
	switch field {
	case "dir":
		return c.Plugins.Dir, nil
	default:
		return "", fmt.Errorf("unknown field: plugins.%s", field)
	}
}

func (c *Config) setPluginsField(field, value string) error {
	switch field {
	case "dir":
		c.Plugins.Dir = value
	default:
		return fmt.Errorf("unknown field: plugins.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, err := fuzzy.ParseMode(c.Search.MatchMode); err != nil {
		return fmt.Errorf("search.match_mode: %w", err)
	}

	seen := make(map[string]string)
	for _, s := range []struct{ key, value string }{
		{"search.simple_sigil", c.Search.SimpleSigil},
		{"search.fuzzy_sigil", c.Search.FuzzySigil},
		{"search.fuzzy_parts_sigil", c.Search.FuzzyPartsSigil},
		{"search.switch_sigil", c.Search.SwitchSigil},
	} {
		if !isValidSigil(s.value) {
			return fmt.Errorf("%s must be a single character or empty (got: %q)", s.key, s.value)
		}
		if s.value == "" {
			continue
		}
		if other, ok := seen[s.value]; ok {
			return fmt.Errorf("%s and %s use the same character %q", other, s.key, s.value)
		}
		seen[s.value] = s.key
	}

	if _, err := parseSwitchMode(c.Search.SwitchMode); err != nil {
		return fmt.Errorf("search.switch_mode: %w", err)
	}

	for name, mc := range c.Modules {
		if mc.Weight <= 0 {
			return fmt.Errorf("modules.%s.weight must be > 0 (got: %d)", name, mc.Weight)
		}
	}

	for i, site := range c.Web.Sites {
		if site.Name == "" {
			return fmt.Errorf("web.sites[%d].name is empty", i)
		}
		if !strings.Contains(site.URL, "%s") {
			return fmt.Errorf("web.sites[%d].url must contain %%s (got: %s)", i, site.URL)
		}
	}

	// Clamp cache size to at least one entry
	if c.Catalog.CacheSize < 1 {
		c.Catalog.CacheSize = 1
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	return nil
}

// parseSwitchMode accepts only modes with a lookup registered at startup.
func parseSwitchMode(value string) (search.Mode, error) {
	mode, err := search.ParseMode(value)
	if err != nil {
		return search.ModeNone, err
	}
	if mode == search.ModeDefault {
		return search.ModeNone, errors.New("must not be default")
	}
	if !slices.Contains(SwitchModes, mode) {
		return search.ModeNone, fmt.Errorf("%q has no lookup at startup (use web)", value)
	}
	return mode, nil
}

// SearchSettings converts the search section into query parsing settings.
// The configuration is expected to be valid.
func (c *Config) SearchSettings() search.Settings {
	s := search.Settings{
		SimpleSigil:     firstRune(c.Search.SimpleSigil),
		FuzzySigil:      firstRune(c.Search.FuzzySigil),
		FuzzyPartsSigil: firstRune(c.Search.FuzzyPartsSigil),
		SwitchSigil:     firstRune(c.Search.SwitchSigil),
	}
	if m, err := fuzzy.ParseMode(c.Search.MatchMode); err == nil {
		s.MatchMode = m
	} else {
		s.MatchMode = fuzzy.Fuzzy
	}
	if m, err := search.ParseMode(c.Search.SwitchMode); err == nil {
		s.SwitchMode = m
	} else {
		s.SwitchMode = search.ModeWebSearch
	}
	return s
}

// ModuleSettings returns the settings of the named module. Unconfigured
// modules use search.DefaultModuleSettings.
func (c *Config) ModuleSettings(name string) search.ModuleSettings {
	mc, ok := c.Modules[name]
	if !ok {
		return search.DefaultModuleSettings()
	}
	return search.ModuleSettings{Enabled: mc.Enabled, Weight: mc.Weight, Order: mc.Order}
}

// Sites returns the configured web search destinations.
func (c *Config) Sites() []lookups.Site {
	sites := make([]lookups.Site, 0, len(c.Web.Sites))
	for _, s := range c.Web.Sites {
		sites = append(sites, lookups.Site{Name: s.Name, URL: s.URL})
	}
	return sites
}

func isValidSigil(s string) bool {
	return s == "" || utf8.RuneCountInString(s) == 1
}

func firstRune(s string) rune {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return 0
	}
	return r
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PALETTE_MATCH_MODE"); v != "" {
		if _, err := fuzzy.ParseMode(v); err == nil {
			c.Search.MatchMode = v
		}
	}
	if v := os.Getenv("PALETTE_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("PALETTE_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	keys := []string{
		"search.match_mode",
		"search.simple_sigil",
		"search.fuzzy_sigil",
		"search.fuzzy_parts_sigil",
		"search.switch_sigil",
		"search.switch_mode",
		"search.history_enabled",
		"catalog.files",
		"catalog.use_store",
		"catalog.cache_size",
		"coords.places",
		"coords.command",
		"plugins.dir",
		"log.level",
	}
	names := make([]string, 0, len(DefaultModules()))
	for name := range DefaultModules() {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, field := range []string{"enabled", "weight", "order"} {
			keys = append(keys, "modules."+name+"."+field)
		}
	}
	return keys
}
