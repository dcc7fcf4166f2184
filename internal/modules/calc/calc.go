// Package calc provides the palette's calculator module. A query starting
// with the trigger character is evaluated as an arithmetic expression.
package calc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/runger/palette/internal/action"
	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/normalize"
	"github.com/runger/palette/internal/search"
)

// Trigger starts a calculator query.
const Trigger = "="

// rawScore ranks calculator results above typical fuzzy hits.
const rawScore = 200

// Module evaluates expressions. The previous selected value is available to
// the next expression as ans.
type Module struct {
	exec action.Executor
	ans  float64
}

// New creates a calculator module.
func New(exec action.Executor) *Module {
	return &Module{exec: exec}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "calc"
}

// Ans returns the last selected value.
func (m *Module) Ans() float64 {
	return m.ans
}

// Search evaluates the query when it starts with Trigger. Evaluation errors
// become an error result.
func (m *Module) Search(ctx *search.Context, _ *fuzzy.Matcher, _ *normalize.Normalizer) error {
	src, ok := strings.CutPrefix(ctx.Criteria.Semantic, Trigger)
	if !ok {
		return nil
	}
	src = strings.TrimSpace(src)
	if src == "" {
		return nil
	}

	v, err := m.Eval(src)
	ctx.AddResult(&Result{
		module: m,
		expr:   src,
		value:  v,
		err:    err,
		score:  ctx.Weighted(rawScore),
	})
	return nil
}

// Eval evaluates src with ans bound to the last selected value.
func (m *Module) Eval(src string) (float64, error) {
	env := map[string]any{
		"ans": m.ans,
		"pi":  math.Pi,
		"e":   math.E,
	}
	program, err := expr.Compile(src, expr.Env(env), sqrtFunc)
	if err != nil {
		return 0, fmt.Errorf("compile: %w", err)
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("evaluate: %w", err)
	}
	return toFloat(out)
}

var sqrtFunc = expr.Function("sqrt", func(params ...any) (any, error) {
	if len(params) != 1 {
		return nil, errors.New("sqrt takes one argument")
	}
	x, err := toFloat(params[0])
	if err != nil {
		return nil, err
	}
	return math.Sqrt(x), nil
})

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case bool:
		return 0, errors.New("expression is a comparison, not a number")
	default:
		return 0, fmt.Errorf("expression result is %T, not a number", v)
	}
}

// Format renders v without trailing zeros.
func Format(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Result is an evaluated expression or the error it produced.
type Result struct {
	module *Module
	expr   string
	value  float64
	err    error
	score  int
}

func (r *Result) Category() string { return "Calculator" }
func (r *Result) Score() int { return r.score }
func (r *Result) Key() string { return r.expr }

// Name shows the value, or the error for a malformed expression.
func (r *Result) Name() string {
	if r.err != nil {
		return "Error: " + r.err.Error()
	}
	return fmt.Sprintf("%s = %s", r.expr, Format(r.value))
}

// CloseOnSelect keeps the palette open on an error so the input can be fixed.
func (r *Result) CloseOnSelect() bool {
	return r.err == nil
}

// Err returns the evaluation error, if any.
func (r *Result) Err() error {
	return r.err
}

// Value returns the evaluated value.
func (r *Result) Value() float64 {
	return r.value
}

// Select stores the value as ans and copies it to the clipboard.
func (r *Result) Select(search.Navigator) error {
	if r.err != nil {
		return nil
	}
	r.module.ans = r.value
	if r.module.exec == nil {
		return nil
	}
	return r.module.exec.Copy(Format(r.value))
}
