package lookups

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/palette/internal/action"
	"github.com/runger/palette/internal/normalize"
	"github.com/runger/palette/internal/search"
)

// --- Test doubles ---

type baseResult struct{ name string }

func (r *baseResult) Category() string { return "Duty" }
func (r *baseResult) Name() string { return r.name }
func (r *baseResult) Score() int { return 1 }
func (r *baseResult) Key() string { return r.name }
func (r *baseResult) CloseOnSelect() bool { return false }
func (r *baseResult) Select(search.Navigator) error { return nil }

type navRecorder struct {
	mode   search.Mode
	lookup search.Lookup
	err    error
}

func (n *navRecorder) EnterMode(mode search.Mode, l search.Lookup) error {
	n.mode, n.lookup = mode, l
	return n.err
}

func (n *navRecorder) SetBase(search.Mode) error { return nil }

func criteria(t *testing.T, base search.Mode, raw string) search.Criteria {
	t.Helper()
	return search.NewState(normalize.New(), search.DefaultSettings).Set(base, raw)
}

func testSites() []Site {
	return []Site{
		{Name: "Wiki", URL: "https://wiki.example/search?q=%s"},
		{Name: "Maps", URL: "https://maps.example/?query=%s", Icon: 7},
	}
}

func resultNames(rs []search.Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Name()
	}
	return out
}

// --- Chooser ---

func TestNewChooser_Errors(t *testing.T) {
	_, err := NewChooser(nil, []Choice{{Name: "x"}}, nil)
	assert.ErrorIs(t, err, ErrNoBaseResult)

	_, err = NewChooser(&baseResult{name: "base"}, nil, nil)
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestChooser_Lookup(t *testing.T) {
	ch, err := NewChooser(&baseResult{name: "Leather"}, []Choice{
		{Name: "Normal quality"},
		{Name: "High quality"},
		{Name: "Collectable"},
	}, normalize.New())
	require.NoError(t, err)

	all := ch.Lookup(criteria(t, search.ModeChooser, ""))
	assert.Equal(t, []string{"Normal quality", "High quality", "Collectable"}, resultNames(all.Results))
	assert.False(t, all.AllowSort)

	hq := ch.Lookup(criteria(t, search.ModeChooser, "hq"))
	assert.Equal(t, []string{"High quality"}, resultNames(hq.Results))
	assert.True(t, hq.AllowSort)

	assert.Empty(t, ch.Lookup(criteria(t, search.ModeChooser, "zzz")).Results)
	assert.Equal(t, "Choose an option for Leather", ch.Placeholder())
	assert.Equal(t, "Leather", ch.Base().Name())
}

func TestChoiceResult_Select(t *testing.T) {
	ran := 0
	ch, err := NewChooser(&baseResult{name: "Leather"}, []Choice{
		{Name: "Craft", Action: func() error { ran++; return nil }},
		{Name: "Broken", Action: func() error { return errors.New("boom") }, KeepOpen: true},
		{Name: "Inert", Category: "Other", Icon: 3},
	}, nil)
	require.NoError(t, err)

	res := ch.Lookup(criteria(t, search.ModeChooser, "")).Results
	require.Len(t, res, 3)

	require.NoError(t, res[0].Select(nil))
	assert.Equal(t, 1, ran)
	assert.True(t, res[0].CloseOnSelect())
	assert.Equal(t, "Duty", res[0].Category())
	assert.Equal(t, "Leather/Craft", res[0].Key())

	err = res[1].Select(nil)
	assert.ErrorContains(t, err, "Leather/Broken")
	assert.False(t, res[1].CloseOnSelect())

	assert.NoError(t, res[2].Select(nil))
	assert.Equal(t, "Other", res[2].Category())
	assert.Equal(t, uint32(3), res[2].(search.Iconic).IconID())
}

// --- Web ---

func TestWebLookup_Lookup(t *testing.T) {
	rec := &action.Recorder{}
	l := NewWebLookup(testSites(), rec, nil, nil)

	res := l.Lookup(criteria(t, search.ModeDefault, "?Duty Finder"))
	require.Len(t, res.Results, 3)
	assert.False(t, res.AllowSort)
	assert.Equal(t, []string{
		`Search for "Duty Finder" on Wiki`,
		`Search for "Duty Finder" on Maps`,
		"Choose a site…",
	}, resultNames(res.Results))

	require.NoError(t, res.Results[1].Select(nil))
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, action.Call{Kind: "open", Target: "https://maps.example/?query=Duty+Finder"}, last)
	assert.Equal(t, uint32(7), res.Results[1].(search.Iconic).IconID())
}

func TestWebLookup_EmptyQuery(t *testing.T) {
	l := NewWebLookup(testSites(), &action.Recorder{}, nil, nil)
	assert.Empty(t, l.Lookup(criteria(t, search.ModeWebSearch, "")).Results)
	assert.Empty(t, NewWebLookup(nil, nil, nil, nil).Lookup(criteria(t, search.ModeWebSearch, "x")).Results)
	assert.Equal(t, "Search the web…", l.Placeholder())
}

func TestWebLookup_SingleSiteHasNoChooser(t *testing.T) {
	l := NewWebLookup(testSites()[:1], &action.Recorder{}, nil, nil)
	res := l.Lookup(criteria(t, search.ModeWebSearch, "abc"))
	assert.Len(t, res.Results, 1)
}

func TestWebLookup_SetSites(t *testing.T) {
	l := NewWebLookup(testSites(), &action.Recorder{}, nil, nil)
	l.SetSites(testSites()[1:])
	res := l.Lookup(criteria(t, search.ModeWebSearch, "abc"))
	require.Len(t, res.Results, 1)
	assert.Equal(t, `Search for "abc" on Maps`, res.Results[0].Name())
}

func TestWebResult_NoExecutor(t *testing.T) {
	l := NewWebLookup(testSites(), nil, nil, nil)
	res := l.Lookup(criteria(t, search.ModeWebSearch, "abc"))
	assert.Error(t, res.Results[0].Select(nil))
}

func TestSiteChooser_EntersChooser(t *testing.T) {
	rec := &action.Recorder{}
	l := NewWebLookup(testSites(), rec, normalize.New(), nil)
	res := l.Lookup(criteria(t, search.ModeWebSearch, "a&b"))
	chooser := res.Results[len(res.Results)-1]
	assert.False(t, chooser.CloseOnSelect())

	nav := &navRecorder{}
	require.NoError(t, chooser.Select(nav))
	assert.Equal(t, search.ModeChooser, nav.mode)

	sites := nav.lookup.Lookup(criteria(t, search.ModeChooser, "wik"))
	require.Len(t, sites.Results, 1)
	require.NoError(t, sites.Results[0].Select(nav))

	last, _ := rec.Last()
	assert.Equal(t, "https://wiki.example/search?q=a%26b", last.Target)
}

func TestSiteSearchURL(t *testing.T) {
	s := Site{URL: "https://x.example/%s/%s"}
	assert.Equal(t, "https://x.example/a+b/a+b", s.SearchURL("a b"))
	assert.Equal(t, "https://x.example/", Site{URL: "https://x.example/"}.SearchURL("q"))
}
