// Package coords provides the palette module that turns "place x y" queries
// into map markers.
package coords

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/runger/palette/internal/action"
	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/normalize"
	"github.com/runger/palette/internal/search"
)

// pattern matches an optional place followed by two numbers separated by
// whitespace or a comma.
var pattern = regexp.MustCompile(`^(?:(.*?)\s+)?(-?\d+(?:\.\d+)?)\s*[,\s]\s*(-?\d+(?:\.\d+)?)$`)

// rawScore is the raw score of a marker without a place.
const rawScore = 100

// Query is a parsed coordinate query.
type Query struct {
	Place string
	X, Y  float64
}

// Parse extracts a coordinate query from s. It reports false when s holds no
// coordinate pair, which is the common case while typing.
func Parse(s string) (Query, bool) {
	m := pattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Query{}, false
	}
	x, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Query{}, false
	}
	y, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Query{}, false
	}
	return Query{Place: strings.TrimSpace(m[1]), X: x, Y: y}, true
}

// Config configures the coordinates module.
type Config struct {
	// Places that may prefix the coordinates.
	Places []string
	// Command is run on select. {place}, {x} and {y} are replaced; {place}
	// is quoted.
	Command  string
	Executor action.Executor
}

// Module resolves coordinate queries against known places.
type Module struct {
	places  []string
	command string
	exec    action.Executor
}

// New creates a coordinates module.
func New(cfg Config) *Module {
	return &Module{
		places:  append([]string(nil), cfg.Places...),
		command: cfg.Command,
		exec:    cfg.Executor,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "coords"
}

// SetPlaces replaces the known places.
func (m *Module) SetPlaces(places []string) {
	m.places = append([]string(nil), places...)
}

// SetCommand replaces the marker command template.
func (m *Module) SetCommand(command string) {
	m.command = command
}

// Search adds a marker per place matching the query's place part, or a
// single placeless marker when there is none.
func (m *Module) Search(ctx *search.Context, _ *fuzzy.Matcher, n *normalize.Normalizer) error {
	q, ok := Parse(ctx.Criteria.Semantic)
	if !ok {
		return nil
	}

	if q.Place == "" {
		ctx.AddResult(m.result("", q, ctx.Weighted(rawScore)))
		return nil
	}

	fold := ctx.Criteria.ContainsKana
	pm := fuzzy.New(n.Searchable(q.Place, fold), ctx.Criteria.MatchMode)
	for _, place := range m.places {
		if ctx.OverLimit() {
			break
		}
		raw := pm.Matches(n.Searchable(place, fold))
		if raw <= 0 {
			continue
		}
		ctx.AddResult(m.result(place, q, ctx.Weighted(raw)))
	}
	return nil
}

func (m *Module) result(place string, q Query, score int) *Result {
	return &Result{module: m, place: place, x: q.X, y: q.Y, score: score}
}

// Result is a map marker at a coordinate.
type Result struct {
	module *Module
	place  string
	x, y   float64
	score  int
}

func (r *Result) Category() string { return "Coordinates" }
func (r *Result) Score() int { return r.score }
func (r *Result) CloseOnSelect() bool { return true }

// Key identifies the marker by place and position.
func (r *Result) Key() string {
	return fmt.Sprintf("%s@%s,%s", r.place, formatCoord(r.x), formatCoord(r.y))
}

// Name renders the marker.
func (r *Result) Name() string {
	if r.place == "" {
		return fmt.Sprintf("Flag (%s, %s)", formatCoord(r.x), formatCoord(r.y))
	}
	return fmt.Sprintf("Flag %s (%s, %s)", r.place, formatCoord(r.x), formatCoord(r.y))
}

// Command returns the expanded marker command.
func (r *Result) Command() string {
	return strings.NewReplacer(
		"{place}", shellQuote(r.place),
		"{x}", formatCoord(r.x),
		"{y}", formatCoord(r.y),
	).Replace(r.module.command)
}

// Select runs the marker command.
func (r *Result) Select(search.Navigator) error {
	if r.module.command == "" || r.module.exec == nil {
		return fmt.Errorf("coordinates: no marker command configured")
	}
	return r.module.exec.Run(r.Command())
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
