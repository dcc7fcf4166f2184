package search

import (
	"fmt"

	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/normalize"
)

// --- Test doubles ---

type stubResult struct {
	module string
	name   string
	score  int
}

func (r *stubResult) Category() string { return r.module }
func (r *stubResult) Name() string { return r.name }
func (r *stubResult) Score() int { return r.score }
func (r *stubResult) Key() string { return r.module + "/" + r.name }
func (r *stubResult) CloseOnSelect() bool { return true }
func (r *stubResult) Select(Navigator) error { return nil }

type otherResult struct{ stubResult }

// stubModule scores its items with the shared matcher. When raw is set it
// reports that raw score for every item instead.
type stubModule struct {
	name  string
	items []string
	raw   int
	err   error
	calls int
}

func (m *stubModule) Name() string { return m.name }

func (m *stubModule) Search(ctx *Context, mt *fuzzy.Matcher, n *normalize.Normalizer) error {
	m.calls++
	for _, item := range m.items {
		if ctx.OverLimit() {
			break
		}
		raw := m.raw
		if raw == 0 {
			raw = mt.Matches(n.Searchable(item, ctx.Criteria.ContainsKana))
		}
		ctx.AddResult(&stubResult{module: m.name, name: item, score: ctx.Weighted(raw)})
	}
	return m.err
}

// recordingLookup records the calls it receives.
type recordingLookup struct {
	name     string
	results  []Result
	lookups  int
	opens    int
	selected []Result
}

func (l *recordingLookup) Lookup(Criteria) LookupResult {
	l.lookups++
	return LookupResult{Results: l.results}
}

func (l *recordingLookup) Placeholder() string { return l.name }
func (l *recordingLookup) OnOpen() { l.opens++ }

func (l *recordingLookup) OnSelected(_ Criteria, r Result) {
	l.selected = append(l.selected, r)
}

func newTestState() *State {
	return NewState(normalize.New(), DefaultSettings)
}

func criteriaFor(raw string) Criteria {
	return newTestState().Set(ModeDefault, raw)
}

func names(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name()
	}
	return out
}

func items(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s %d", prefix, i)
	}
	return out
}
