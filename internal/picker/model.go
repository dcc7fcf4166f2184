// Package picker renders the command palette as a Bubble Tea program.
package picker

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	plog "github.com/runger/palette/internal/log"
	"github.com/runger/palette/internal/search"
)

// DefaultDebounce is the delay after the last keystroke before the query runs.
const DefaultDebounce = 30 * time.Millisecond

// pickerState represents the current state of the picker's state machine.
type pickerState int

const (
	stateIdle      pickerState = iota // Before the first lookup
	stateLoaded                       // Lookup returned results
	stateEmpty                        // Lookup returned nothing
	stateError                        // The last selection failed
	stateSelected                     // A result closed the palette
	stateCancelled                    // User cancelled (Esc / Ctrl+C)
)

// debounceMsg fires after the debounce timer expires.
type debounceMsg struct {
	id uint64 // Must match current debounceID to be accepted
}

// initMsg is sent by Init() so the first lookup runs through Update.
type initMsg struct{}

// configChangedMsg is sent when the watched configuration file changes.
type configChangedMsg struct {
	err error
}

// Options configures a palette Model.
type Options struct {
	Root  *search.Root
	State *search.State

	// Bases are the base modes cycled with Tab. Defaults to default and web.
	Bases []search.Mode

	// Query pre-fills the input.
	Query string

	// Debounce delays lookups while typing. Zero runs them immediately.
	Debounce time.Duration

	// Reload re-reads configuration after the watched file changed.
	Reload func() error

	// Watcher delivers configuration file changes. Optional.
	Watcher *ConfigWatcher

	Logger *slog.Logger
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Back   key.Binding
	Quit   key.Binding
	Cycle  key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "ctrl+p")),
	Down:   key.NewBinding(key.WithKeys("down", "ctrl+n")),
	Select: key.NewBinding(key.WithKeys("enter")),
	Back:   key.NewBinding(key.WithKeys("esc")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c")),
	Cycle:  key.NewBinding(key.WithKeys("tab")),
}

// Model is the Bubble Tea model for the palette TUI.
type Model struct {
	state     pickerState
	root      *search.Root
	nav       *navigator
	criteria  *search.State
	bases     []search.Mode
	input     textinput.Model
	results   []search.Result
	selection int // Index into results; -1 when empty
	err       error

	sessionID string
	logger    *slog.Logger
	reload    func() error
	watcher   *ConfigWatcher

	debounce   time.Duration
	debounceID uint64

	width  int // Terminal width
	height int // Terminal height

	// selected holds the result that closed the palette.
	selected search.Result
}

// NewModel creates a new palette Model.
func NewModel(opts Options) Model {
	bases := opts.Bases
	if len(bases) == 0 {
		bases = []search.Mode{search.ModeDefault, search.ModeWebSearch}
	}
	logger := opts.Logger
	if logger == nil {
		logger = plog.Discard()
	}

	in := textinput.New()
	in.Prompt = "> "
	in.PromptStyle = queryStyle
	in.SetValue(opts.Query)
	in.Focus()

	sessionID := uuid.NewString()
	return Model{
		state:     stateIdle,
		root:      opts.Root,
		nav:       &navigator{root: opts.Root},
		criteria:  opts.State,
		bases:     bases,
		input:     in,
		selection: -1,
		sessionID: sessionID,
		logger:    logger.With("session_id", sessionID),
		reload:    opts.Reload,
		watcher:   opts.Watcher,
		debounce:  opts.Debounce,
	}
}

// Selected returns the result that closed the palette, or nil if cancelled.
func (m Model) Selected() search.Result {
	return m.selected
}

// SessionID identifies this palette session in log lines.
func (m Model) SessionID() string {
	return m.sessionID
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return initMsg{} },
		textinput.Blink,
		waitForChange(m.watcher),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 1)
		return m, nil

	case debounceMsg:
		if msg.id != m.debounceID {
			return m, nil // Stale debounce timer; ignore.
		}
		m.runLookup()
		return m, nil

	case configChangedMsg:
		return m.handleConfigChanged(msg)

	case initMsg:
		m.root.OnOpen()
		m.runLookup()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.state = stateCancelled
		return m, tea.Quit

	case key.Matches(msg, keys.Back):
		// Leave explicitly entered modes before closing the palette.
		if m.nav.back() {
			m.input.SetValue("")
			m.selection = 0
			m.runLookup()
			return m, nil
		}
		m.state = stateCancelled
		return m, tea.Quit

	case key.Matches(msg, keys.Select):
		return m.selectCurrent()

	case key.Matches(msg, keys.Up):
		if m.selection > 0 {
			m.selection--
		}
		return m, nil

	case key.Matches(msg, keys.Down):
		if m.selection < len(m.results)-1 {
			m.selection++
		}
		return m, nil

	case key.Matches(msg, keys.Cycle):
		m.cycleBase()
		m.runLookup()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.startDebounce())
}

// selectCurrent runs the highlighted result. The active lookup is told
// about the selection before the result's action may switch modes.
func (m Model) selectCurrent() (tea.Model, tea.Cmd) {
	if m.selection < 0 || m.selection >= len(m.results) {
		return m, nil
	}
	r := m.results[m.selection]
	mode := m.root.ActiveMode()

	m.root.OnSelected(m.criteria.Current(), r)
	if err := r.Select(m.nav); err != nil {
		plog.LogSelectFailed(m.logger, r.Category(), r.Name(), err)
		m.state = stateError
		m.err = err
		return m, nil
	}
	plog.LogSelection(m.logger, mode.String(), r.Category(), r.Name())

	if r.CloseOnSelect() {
		m.state = stateSelected
		m.selected = r
		return m, tea.Quit
	}

	m.input.SetValue("")
	m.selection = 0
	m.runLookup()
	return m, nil
}

// cycleBase moves the base mode to the next entry of bases.
func (m *Model) cycleBase() {
	cur := m.root.Base()
	next := m.bases[0]
	for i, b := range m.bases {
		if b == cur {
			next = m.bases[(i+1)%len(m.bases)]
			break
		}
	}
	if err := m.root.SetBase(next); err != nil {
		m.logger.Warn("picker: cannot switch base mode", "mode", next.String(), "error", err)
	}
}

func (m Model) handleConfigChanged(msg configChangedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("picker: config watcher failed", "error", msg.err)
		return m, waitForChange(m.watcher)
	}
	path := ""
	if m.watcher != nil {
		path = m.watcher.name
	}
	if m.reload != nil {
		if err := m.reload(); err != nil {
			plog.LogConfigReloadFailed(m.logger, path, err)
			return m, waitForChange(m.watcher)
		}
	}
	plog.LogConfigReload(m.logger, path)
	m.runLookup()
	return m, waitForChange(m.watcher)
}

// startDebounce increments the debounce counter and returns a command that
// fires after the debounce interval.
func (m *Model) startDebounce() tea.Cmd {
	m.debounceID++
	id := m.debounceID
	if m.debounce <= 0 {
		return func() tea.Msg { return debounceMsg{id: id} }
	}
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return debounceMsg{id: id}
	})
}

// runLookup parses the input for the current mode and queries the root.
func (m *Model) runLookup() {
	c := m.criteria.Set(m.root.InputMode(), m.input.Value())
	res := m.root.Lookup(c)
	m.results = res.Results
	m.input.Placeholder = m.root.Placeholder()
	m.err = nil

	if len(m.results) == 0 {
		m.state = stateEmpty
		m.selection = -1
		return
	}
	m.state = stateLoaded
	m.clampSelection()
}

// clampSelection ensures the selection index is within bounds.
func (m *Model) clampSelection() {
	if len(m.results) == 0 {
		m.selection = -1
		return
	}
	if m.selection < 0 {
		m.selection = 0
	}
	if m.selection >= len(m.results) {
		m.selection = len(m.results) - 1
	}
}

// listHeight returns the number of visible list rows (terminal height minus
// header and footer).
func (m Model) listHeight() int {
	// 1 row for mode bar, 1 row for query line, 1 row for status
	const chrome = 3
	h := m.height - chrome
	if h < 1 {
		h = 10 // Sensible default before first WindowSizeMsg
	}
	return h
}

// --- View rendering ---

var (
	activeModeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	inactiveModeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	categoryStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
	queryStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// categoryWidth is the display width of the category column.
const categoryWidth = 12

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewModeBar())
	b.WriteRune('\n')

	b.WriteString(m.input.View())
	b.WriteRune('\n')

	b.WriteString(m.viewContent())
	b.WriteRune('\n')

	b.WriteString(m.viewStatus())

	return b.String()
}

// viewModeBar renders the base modes with the active one highlighted.
func (m Model) viewModeBar() string {
	active := m.root.ActiveMode()
	var parts []string
	for _, mode := range m.bases {
		label := " " + mode.String() + " "
		if mode == active {
			parts = append(parts, activeModeStyle.Render(label))
		} else {
			parts = append(parts, inactiveModeStyle.Render(label))
		}
	}
	if !containsMode(m.bases, active) {
		parts = append(parts, activeModeStyle.Render(" "+active.String()+" "))
	}
	return strings.Join(parts, " ")
}

// viewContent renders the result list or a status message.
func (m Model) viewContent() string {
	switch m.state {
	case stateIdle:
		return dimStyle.Render("Loading...")

	case stateEmpty:
		return dimStyle.Render("No matches")

	case stateCancelled:
		return dimStyle.Render("Cancelled")

	case stateError:
		msg := "Error"
		if m.err != nil {
			msg = fmt.Sprintf("Error: %s", m.err)
		}
		return errorStyle.Render(msg) + "\n" + m.viewList()

	default:
		return m.viewList()
	}
}

// viewList renders the visible window of results around the selection.
func (m Model) viewList() string {
	rows := m.listHeight()
	start := 0
	if m.selection >= rows {
		start = m.selection - rows + 1
	}
	end := min(start+rows, len(m.results))

	nameWidth := 0
	if m.width > categoryWidth+4 {
		nameWidth = m.width - categoryWidth - 4
	}

	var lines []string
	for i := start; i < end; i++ {
		r := m.results[i]
		category := categoryStyle.Render(PadRight(Sanitize(r.Category()), categoryWidth))
		name := Sanitize(r.Name())
		if nameWidth > 0 {
			name = MiddleTruncate(name, nameWidth)
		}

		if i == m.selection {
			lines = append(lines, selectedStyle.Render("> ")+category+" "+selectedStyle.Render(name))
		} else {
			lines = append(lines, "  "+category+" "+normalStyle.Render(name))
		}
	}
	return strings.Join(lines, "\n")
}

// viewStatus renders the result count.
func (m Model) viewStatus() string {
	n := len(m.results)
	if n == 1 {
		return dimStyle.Render("1 result")
	}
	return dimStyle.Render(fmt.Sprintf("%d results", n))
}

func containsMode(modes []search.Mode, mode search.Mode) bool {
	for _, m := range modes {
		if m == mode {
			return true
		}
	}
	return false
}
