package search

import (
	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/normalize"
)

// DefaultWeight is the weight of a module with no configured weight.
const DefaultWeight = 100

// Module is an independent source of results. It owns a disjoint slice of
// the searchable universe and knows nothing about other modules.
//
// Search scores its candidates against m and appends the weighted hits to
// ctx. A candidate that cannot be parsed or scored is skipped; a returned
// error is logged by the aggregator and never hides other modules' results.
type Module interface {
	Name() string
	Search(ctx *Context, m *fuzzy.Matcher, n *normalize.Normalizer) error
}

// ModuleSettings is the per-module part of the configuration surface.
type ModuleSettings struct {
	Enabled bool
	Weight  int
	Order   int
}

// DefaultModuleSettings returns the settings of an unconfigured module.
func DefaultModuleSettings() ModuleSettings {
	return ModuleSettings{Enabled: true, Weight: DefaultWeight}
}

// Lookup produces results for one lookup mode.
type Lookup interface {
	Lookup(c Criteria) LookupResult
	// Placeholder is the hint shown in an empty text box.
	Placeholder() string
	// OnOpen is called once each time the palette becomes visible.
	OnOpen()
	// OnSelected is called after r has been selected for c.
	OnSelected(c Criteria, r Result)
}
