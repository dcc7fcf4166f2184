package picker

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/palette/internal/search"
)

// --- Test lookups and results ---

// eventLog records calls in the order they happen.
type eventLog struct {
	events []string
}

func (l *eventLog) add(e string) { l.events = append(l.events, e) }

type fakeResult struct {
	name     string
	keepOpen bool
	log      *eventLog
	onSelect func(nav search.Navigator) error
}

func (r *fakeResult) Category() string { return "Test" }
func (r *fakeResult) Name() string { return r.name }
func (r *fakeResult) Score() int { return 1 }
func (r *fakeResult) Key() string { return r.name }
func (r *fakeResult) CloseOnSelect() bool { return !r.keepOpen }

func (r *fakeResult) Select(nav search.Navigator) error {
	if r.log != nil {
		r.log.add("select " + r.name)
	}
	if r.onSelect != nil {
		return r.onSelect(nav)
	}
	return nil
}

// listLookup returns the results whose name contains the match text.
type listLookup struct {
	placeholder string
	results     []search.Result
	log         *eventLog
	opens       int
	lookups     int
}

func (l *listLookup) Lookup(c search.Criteria) search.LookupResult {
	l.lookups++
	var out []search.Result
	for _, r := range l.results {
		if c.Match == "" || strings.Contains(strings.ToLower(r.Name()), c.Match) {
			out = append(out, r)
		}
	}
	return search.LookupResult{Results: out}
}

func (l *listLookup) Placeholder() string { return l.placeholder }
func (l *listLookup) OnOpen() { l.opens++ }

func (l *listLookup) OnSelected(_ search.Criteria, r search.Result) {
	if l.log != nil {
		l.log.add("selected " + r.Name())
	}
}

type fixture struct {
	log  *eventLog
	def  *listLookup
	web  *listLookup
	root *search.Root
}

func newFixture(t *testing.T, results ...*fakeResult) fixture {
	t.Helper()
	log := &eventLog{}
	def := &listLookup{placeholder: "Type to search", log: log}
	for _, r := range results {
		r.log = log
		def.results = append(def.results, r)
	}
	web := &listLookup{placeholder: "Search the web", log: log}
	root, err := search.NewRoot(search.ModeDefault, map[search.Mode]search.Lookup{
		search.ModeDefault:   def,
		search.ModeWebSearch: web,
	}, nil)
	require.NoError(t, err)
	return fixture{log: log, def: def, web: web, root: root}
}

func (f fixture) model(opts Options) Model {
	opts.Root = f.root
	opts.State = search.NewState(nil, nil)
	m := NewModel(opts)
	m.width = 80
	m.height = 24
	return m
}

// update feeds msg into m and returns the resulting model and command.
func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	result, cmd := m.Update(msg)
	return result.(Model), cmd
}

// started runs the initial lookup.
func started(m Model) Model {
	m, _ = update(m, initMsg{})
	return m
}

// typeText types s and fires the pending debounce timer.
func typeText(m Model, s string) Model {
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	m, _ = update(m, debounceMsg{id: m.debounceID})
	return m
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func resultNames(m Model) []string {
	out := make([]string, len(m.results))
	for i, r := range m.results {
		out[i] = r.Name()
	}
	return out
}

// --- State transition tests ---

func TestInitialState(t *testing.T) {
	f := newFixture(t)
	m := f.model(Options{})
	assert.Equal(t, stateIdle, m.state)
	assert.Equal(t, -1, m.selection)
	assert.NotEmpty(t, m.SessionID())
	assert.NotNil(t, m.Init())
}

func TestInit_OpensAndLoads(t *testing.T) {
	f := newFixture(t, &fakeResult{name: "duty finder"}, &fakeResult{name: "party finder"})
	m := started(f.model(Options{}))

	assert.Equal(t, 1, f.def.opens)
	assert.Equal(t, stateLoaded, m.state)
	assert.Equal(t, 0, m.selection)
	assert.Equal(t, "Type to search", m.input.Placeholder)
	assert.Equal(t, []string{"duty finder", "party finder"}, resultNames(m))
}

func TestInit_Empty(t *testing.T) {
	f := newFixture(t)
	m := started(f.model(Options{}))
	assert.Equal(t, stateEmpty, m.state)
	assert.Equal(t, -1, m.selection)
	assert.Contains(t, m.View(), "No matches")
}

func TestTyping_FiltersResults(t *testing.T) {
	f := newFixture(t, &fakeResult{name: "duty finder"}, &fakeResult{name: "party finder"})
	m := started(f.model(Options{}))

	m = typeText(m, "duty")
	assert.Equal(t, "duty", m.input.Value())
	assert.Equal(t, []string{"duty finder"}, resultNames(m))

	m = typeText(m, "x")
	assert.Equal(t, stateEmpty, m.state)
}

func TestTyping_StaleDebounceIgnored(t *testing.T) {
	f := newFixture(t, &fakeResult{name: "alpha"})
	m := started(f.model(Options{}))
	before := f.def.lookups

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")})
	stale := m.debounceID
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})

	m, _ = update(m, debounceMsg{id: stale})
	assert.Equal(t, before, f.def.lookups, "stale timer must not query")

	_, _ = update(m, debounceMsg{id: m.debounceID})
	assert.Equal(t, before+1, f.def.lookups)
}

func TestTyping_SwitchSigilUsesWebLookup(t *testing.T) {
	f := newFixture(t, &fakeResult{name: "alpha"})
	f.web.results = []search.Result{&fakeResult{name: "search for weather"}}
	m := started(f.model(Options{}))

	m = typeText(m, "?weather")
	assert.Equal(t, search.ModeWebSearch, f.root.ActiveMode())
	assert.Equal(t, []string{"search for weather"}, resultNames(m))
	assert.Equal(t, "Search the web", m.input.Placeholder)
}

func TestNavigation(t *testing.T) {
	f := newFixture(t, &fakeResult{name: "a"}, &fakeResult{name: "b"})
	m := started(f.model(Options{}))

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.selection)
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selection)
	m, _ = update(m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.selection)
}

// --- Selection tests ---

func TestEnter_ClosesOnSelect(t *testing.T) {
	r := &fakeResult{name: "duty finder"}
	f := newFixture(t, r)
	m := started(f.model(Options{}))

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, isQuit(cmd))
	assert.Equal(t, stateSelected, m.state)
	assert.Same(t, r, m.Selected())
	assert.Equal(t, []string{"selected duty finder", "select duty finder"}, f.log.events,
		"the lookup sees the selection before the action runs")
}

func TestEnter_KeepOpenEntersChooser(t *testing.T) {
	chooser := &listLookup{
		placeholder: "Choose an option",
		results:     []search.Result{&fakeResult{name: "open"}, &fakeResult{name: "copy"}},
	}
	r := &fakeResult{
		name:     "emote",
		keepOpen: true,
		onSelect: func(nav search.Navigator) error {
			return nav.EnterMode(search.ModeChooser, chooser)
		},
	}
	f := newFixture(t, r)
	m := started(f.model(Options{}))
	m = typeText(m, "emo")

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, isQuit(cmd))
	assert.Nil(t, m.Selected())
	assert.Equal(t, search.ModeChooser, f.root.ActiveMode())
	assert.Empty(t, m.input.Value(), "input cleared for the new mode")
	assert.Equal(t, []string{"open", "copy"}, resultNames(m))
	assert.Equal(t, "Choose an option", m.input.Placeholder)
	assert.Equal(t, 1, chooser.opens)
	assert.Contains(t, m.View(), "chooser")

	// Esc leaves the chooser first, then closes the palette.
	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, isQuit(cmd))
	assert.Equal(t, search.ModeDefault, f.root.ActiveMode())
	assert.Equal(t, []string{"emote"}, resultNames(m))

	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, isQuit(cmd))
	assert.Equal(t, stateCancelled, m.state)
}

func TestEnter_ChooserFromChooser(t *testing.T) {
	styles := &listLookup{
		placeholder: "Choose a style",
		results:     []search.Result{&fakeResult{name: "casual"}, &fakeResult{name: "formal"}},
	}
	options := &listLookup{
		placeholder: "Choose an option",
		results: []search.Result{&fakeResult{
			name:     "style",
			keepOpen: true,
			onSelect: func(nav search.Navigator) error {
				return nav.EnterMode(search.ModeChooser, styles)
			},
		}},
	}
	r := &fakeResult{
		name:     "emote",
		keepOpen: true,
		onSelect: func(nav search.Navigator) error {
			return nav.EnterMode(search.ModeChooser, options)
		},
	}
	f := newFixture(t, r)
	m := started(f.model(Options{}))

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, []string{"style"}, resultNames(m))

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, isQuit(cmd))
	assert.NotEqual(t, stateError, m.state, "the first chooser is promoted before the second is entered")
	assert.Equal(t, []string{"casual", "formal"}, resultNames(m))
	assert.Equal(t, "Choose a style", m.input.Placeholder)

	// Esc returns to the mode the palette started in.
	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, isQuit(cmd))
	assert.Equal(t, search.ModeDefault, f.root.Base())
	assert.False(t, f.root.HasOverride())
	assert.Equal(t, []string{"emote"}, resultNames(m))

	m, cmd = update(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, isQuit(cmd))
}

func TestEnter_SelectError(t *testing.T) {
	r := &fakeResult{name: "broken", onSelect: func(search.Navigator) error {
		return errors.New("exit status 1")
	}}
	f := newFixture(t, r)
	m := started(f.model(Options{}))

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, isQuit(cmd))
	assert.Equal(t, stateError, m.state)
	assert.Nil(t, m.Selected())
	assert.Contains(t, m.View(), "exit status 1")
}

func TestEnter_NoResults(t *testing.T) {
	f := newFixture(t)
	m := started(f.model(Options{}))
	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, f.log.events)
	assert.Equal(t, stateEmpty, m.state)
}

func TestCtrlC_Cancels(t *testing.T) {
	f := newFixture(t, &fakeResult{name: "a"})
	m := started(f.model(Options{}))
	require.NoError(t, f.root.SetOverride(search.ModeWebSearch))

	m, cmd := update(m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, isQuit(cmd))
	assert.Equal(t, stateCancelled, m.state)
	assert.Nil(t, m.Selected())
}

// --- Mode and reload tests ---

func TestTab_CyclesBase(t *testing.T) {
	f := newFixture(t, &fakeResult{name: "a"})
	m := started(f.model(Options{}))

	m, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, search.ModeWebSearch, f.root.Base())
	assert.Equal(t, 1, f.web.lookups)

	_, _ = update(m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, search.ModeDefault, f.root.Base())
}

func TestConfigChanged_ReloadsAndRequeries(t *testing.T) {
	f := newFixture(t, &fakeResult{name: "a"})
	reloads := 0
	m := started(f.model(Options{Reload: func() error {
		reloads++
		return nil
	}}))
	before := f.def.lookups

	m, cmd := update(m, configChangedMsg{})
	assert.Equal(t, 1, reloads)
	assert.Equal(t, before+1, f.def.lookups)
	assert.Nil(t, cmd, "no watcher to re-arm")
	assert.Equal(t, stateLoaded, m.state)
}

func TestConfigChanged_ReloadFailureKeepsResults(t *testing.T) {
	f := newFixture(t, &fakeResult{name: "a"})
	m := started(f.model(Options{Reload: func() error { return errors.New("bad yaml") }}))
	before := f.def.lookups

	m, _ = update(m, configChangedMsg{})
	assert.Equal(t, before, f.def.lookups)
	assert.Equal(t, []string{"a"}, resultNames(m))
}

// --- View tests ---

func TestView_RendersRows(t *testing.T) {
	long := strings.Repeat("x", 200)
	f := newFixture(t, &fakeResult{name: "duty finder"}, &fakeResult{name: long})
	m := started(f.model(Options{}))

	v := m.View()
	assert.Contains(t, v, "duty finder")
	assert.Contains(t, v, "Test")
	assert.Contains(t, v, "2 results")
	assert.NotContains(t, v, long, "long names are truncated")
	assert.Contains(t, v, "…")
}
