// Package lookups holds the secondary lookup modes the palette can switch
// into: the web lookup and the disambiguation chooser.
package lookups

import (
	"errors"
	"fmt"

	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/normalize"
	"github.com/runger/palette/internal/search"
)

// Chooser errors.
var (
	ErrNoBaseResult = errors.New("chooser requires a base result")
	ErrNoChoices    = errors.New("chooser requires at least one choice")
)

// Choice is one way of acting on the chooser's base result.
type Choice struct {
	Name     string
	Category string
	// Icon is an opaque icon id; zero means none.
	Icon uint32
	// Action runs when the choice is selected.
	Action func() error
	// KeepOpen keeps the palette open after the choice runs.
	KeepOpen bool
}

// ChooserLookup narrows a single previously selected result down to one of
// its choices. The base result is fixed at construction.
type ChooserLookup struct {
	base       search.Result
	choices    []Choice
	normalizer *normalize.Normalizer
}

// NewChooser creates a chooser for base. n is the session normalizer; nil
// creates a default one.
func NewChooser(base search.Result, choices []Choice, n *normalize.Normalizer) (*ChooserLookup, error) {
	if base == nil {
		return nil, ErrNoBaseResult
	}
	if len(choices) == 0 {
		return nil, fmt.Errorf("%s: %w", base.Name(), ErrNoChoices)
	}
	if n == nil {
		n = normalize.New()
	}
	return &ChooserLookup{
		base:       base,
		choices:    append([]Choice(nil), choices...),
		normalizer: n,
	}, nil
}

// Base returns the result being disambiguated.
func (l *ChooserLookup) Base() search.Result {
	return l.base
}

// Lookup lists every choice for an empty query, otherwise the choices whose
// name matches.
func (l *ChooserLookup) Lookup(c search.Criteria) search.LookupResult {
	if c.IsEmpty() {
		out := make([]search.Result, len(l.choices))
		for i := range l.choices {
			out[i] = l.result(i, 1)
		}
		return search.LookupResult{Results: out}
	}

	m := fuzzy.New(c.Match, c.MatchMode)
	var out []search.Result
	for i, ch := range l.choices {
		score := m.Matches(l.normalizer.Searchable(ch.Name, c.ContainsKana))
		if score <= 0 {
			continue
		}
		out = append(out, l.result(i, score))
	}
	res := search.LookupResult{Results: out, AllowSort: true}
	res.Sort(c.MatchMode)
	return res
}

// Placeholder names the base result.
func (l *ChooserLookup) Placeholder() string {
	return fmt.Sprintf("Choose an option for %s", l.base.Name())
}

// OnOpen is a no-op; a chooser has no per-session state.
func (l *ChooserLookup) OnOpen() {}

// OnSelected is a no-op.
func (l *ChooserLookup) OnSelected(search.Criteria, search.Result) {}

func (l *ChooserLookup) result(i, score int) *ChoiceResult {
	return &ChoiceResult{base: l.base, choice: l.choices[i], score: score}
}

// ChoiceResult is one choice offered by a ChooserLookup.
type ChoiceResult struct {
	base   search.Result
	choice Choice
	score  int
}

func (r *ChoiceResult) Category() string {
	if r.choice.Category != "" {
		return r.choice.Category
	}
	return r.base.Category()
}

func (r *ChoiceResult) Name() string { return r.choice.Name }
func (r *ChoiceResult) Score() int { return r.score }
func (r *ChoiceResult) Key() string { return r.base.Key() + "/" + r.choice.Name }
func (r *ChoiceResult) CloseOnSelect() bool { return !r.choice.KeepOpen }
func (r *ChoiceResult) IconID() uint32 { return r.choice.Icon }

// Select runs the choice's action.
func (r *ChoiceResult) Select(search.Navigator) error {
	if r.choice.Action == nil {
		return nil
	}
	if err := r.choice.Action(); err != nil {
		return fmt.Errorf("%s: %w", r.Key(), err)
	}
	return nil
}
