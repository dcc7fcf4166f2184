package search

import (
	"reflect"
	"slices"

	"github.com/runger/palette/internal/fuzzy"
)

// Result is one candidate surfaced by a module or lookup. Each concrete
// result type is a flat record that carries its own Select behavior.
type Result interface {
	Category() string
	Name() string
	// Score is the weighted relevance; results scoring 0 are never added
	// to a Context.
	Score() int
	// Key identifies the real-world item across queries. Two results are
	// the same item iff they have the same concrete type and equal keys.
	Key() string
	CloseOnSelect() bool
	// Select performs the result's action. nav lets the action pivot the
	// palette into another lookup mode.
	Select(nav Navigator) error
}

// Iconic is implemented by results that have a display icon. Icon ids are
// opaque handles resolved by the host.
type Iconic interface {
	IconID() uint32
}

// Navigator is the mode control a result may use while being selected.
type Navigator interface {
	// EnterMode installs l as the lookup for mode and makes it the
	// override, carrying whatever payload l was built with.
	EnterMode(mode Mode, l Lookup) error
	SetBase(mode Mode) error
}

// SameItem reports whether a and b denote the same real-world item.
func SameItem(a, b Result) bool {
	if a == nil || b == nil {
		return false
	}
	return reflect.TypeOf(a) == reflect.TypeOf(b) && a.Key() == b.Key()
}

// LookupResult is the bag of results produced by one lookup call.
type LookupResult struct {
	Results []Result
	// AllowSort marks the bag as rankable by score. Lookups that return a
	// deliberately ordered list leave it false.
	AllowSort bool
}

// Sort orders the bag by descending score when sorting is allowed and the
// match mode is a fuzzy one. The sort is stable, so equal scores keep module
// order and then insertion order.
func (r *LookupResult) Sort(mode fuzzy.Mode) {
	if !r.AllowSort || mode == fuzzy.Simple {
		return
	}
	slices.SortStableFunc(r.Results, func(a, b Result) int {
		return b.Score() - a.Score()
	})
}

// Contains reports whether the bag holds the same item as target.
func (r LookupResult) Contains(target Result) bool {
	_, ok := r.Find(target)
	return ok
}

// Find returns the result in the bag that is the same item as target.
func (r LookupResult) Find(target Result) (Result, bool) {
	for _, res := range r.Results {
		if SameItem(res, target) {
			return res, true
		}
	}
	return nil, false
}
