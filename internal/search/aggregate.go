package search

import (
	"log/slog"
	"slices"

	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/normalize"
)

// AggregateConfig configures the default aggregating lookup.
type AggregateConfig struct {
	// Modules in registration order. Order settings sort them stably.
	Modules []Module

	// Settings returns the current settings of a module. It is consulted on
	// every query. Nil means every module uses DefaultModuleSettings.
	Settings func(name string) ModuleSettings

	// Normalizer shared by every module. Nil uses normalize.New().
	Normalizer *normalize.Normalizer

	// History shown for an empty query. Nil disables history.
	History *History

	// HistoryEnabled gates History at query time. Nil means enabled.
	HistoryEnabled func() bool

	// Hints rotate on every OnOpen and are shown for an empty query when
	// there is no history.
	Hints []string

	// Placeholder shown in the empty text box.
	Placeholder string

	// Mode recorded with history entries. Zero means ModeDefault.
	Mode Mode

	// Logger for module failures.
	Logger *slog.Logger
}

// AggregateLookup fans one query out to every enabled module and merges the
// weighted results.
type AggregateLookup struct {
	modules        []Module
	settings       func(name string) ModuleSettings
	normalizer     *normalize.Normalizer
	history        *History
	historyEnabled func() bool
	hints          []string
	hint           int
	placeholder    string
	mode           Mode
	logger         *slog.Logger
}

// NewAggregateLookup creates an aggregating lookup.
func NewAggregateLookup(cfg AggregateConfig) *AggregateLookup {
	a := &AggregateLookup{
		modules:        slices.Clone(cfg.Modules),
		settings:       cfg.Settings,
		normalizer:     cfg.Normalizer,
		history:        cfg.History,
		historyEnabled: cfg.HistoryEnabled,
		hints:          slices.Clone(cfg.Hints),
		placeholder:    cfg.Placeholder,
		mode:           cfg.Mode,
		logger:         cfg.Logger,
	}
	if a.settings == nil {
		a.settings = func(string) ModuleSettings { return DefaultModuleSettings() }
	}
	if a.normalizer == nil {
		a.normalizer = normalize.New()
	}
	if a.historyEnabled == nil {
		a.historyEnabled = func() bool { return true }
	}
	if a.mode == ModeNone {
		a.mode = ModeDefault
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.placeholder == "" {
		a.placeholder = "Type to search"
	}
	return a
}

// Lookup runs c through the enabled modules. An empty query returns history,
// then the current hint, then nothing.
func (a *AggregateLookup) Lookup(c Criteria) LookupResult {
	if c.IsEmpty() {
		return a.emptyQuery()
	}

	m := fuzzy.New(c.Match, c.MatchMode)
	ctx := NewContext(c)

	// Every enabled module runs; each one polls OverLimit within its own scan.
	for _, em := range a.enabled() {
		ctx.beginModule(em.settings.Weight)
		if err := em.module.Search(ctx, m, a.normalizer); err != nil {
			a.logger.Warn("aggregate: module search failed, continuing with other modules",
				"module", em.module.Name(),
				"error", err)
		}
	}

	res := LookupResult{Results: ctx.Results(), AllowSort: true}
	res.Sort(c.MatchMode)
	return res
}

// SetHints replaces the rotating hints.
func (a *AggregateLookup) SetHints(hints []string) {
	a.hints = slices.Clone(hints)
	if a.hint >= len(a.hints) {
		a.hint = 0
	}
}

// Placeholder returns the configured placeholder text.
func (a *AggregateLookup) Placeholder() string {
	return a.placeholder
}

// OnOpen advances the rotating hint.
func (a *AggregateLookup) OnOpen() {
	if len(a.hints) > 0 {
		a.hint = (a.hint + 1) % len(a.hints)
	}
}

// OnSelected records the selection in history.
func (a *AggregateLookup) OnSelected(c Criteria, r Result) {
	if a.history == nil || !a.historyEnabled() {
		return
	}
	if _, ok := r.(*HintResult); ok {
		return
	}
	a.history.Add(a.mode, c, r)
}

type enabledModule struct {
	module   Module
	settings ModuleSettings
}

func (a *AggregateLookup) enabled() []enabledModule {
	out := make([]enabledModule, 0, len(a.modules))
	for _, m := range a.modules {
		s := a.settings(m.Name())
		if !s.Enabled {
			continue
		}
		out = append(out, enabledModule{module: m, settings: s})
	}
	slices.SortStableFunc(out, func(x, y enabledModule) int {
		return x.settings.Order - y.settings.Order
	})
	return out
}

func (a *AggregateLookup) emptyQuery() LookupResult {
	if a.history != nil && a.historyEnabled() {
		entries := a.history.Entries()
		if len(entries) > 0 {
			rs := make([]Result, 0, len(entries))
			for _, e := range entries {
				rs = append(rs, e.Result)
			}
			return LookupResult{Results: rs}
		}
	}
	if len(a.hints) > 0 {
		return LookupResult{Results: []Result{&HintResult{Text: a.hints[a.hint]}}}
	}
	return LookupResult{}
}

// HintResult is a non-actionable tip shown for an empty query.
type HintResult struct {
	Text string
}

func (h *HintResult) Category() string { return "Hint" }
func (h *HintResult) Name() string { return h.Text }
func (h *HintResult) Score() int { return 1 }
func (h *HintResult) Key() string { return h.Text }
func (h *HintResult) CloseOnSelect() bool { return false }
func (h *HintResult) Select(_ Navigator) error { return nil }
