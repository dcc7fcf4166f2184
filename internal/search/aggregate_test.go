package search

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settingsMap(m map[string]ModuleSettings) func(string) ModuleSettings {
	return func(name string) ModuleSettings {
		if s, ok := m[name]; ok {
			return s
		}
		return DefaultModuleSettings()
	}
}

func TestAggregate_WeightsOrderFuzzyResults(t *testing.T) {
	low := &stubModule{name: "low", items: []string{"low"}, raw: 1}
	mid := &stubModule{name: "mid", items: []string{"mid"}, raw: 1}
	high := &stubModule{name: "high", items: []string{"high"}, raw: 1}

	a := NewAggregateLookup(AggregateConfig{
		Modules: []Module{low, mid, high},
		Settings: settingsMap(map[string]ModuleSettings{
			"low":  {Enabled: true, Weight: 50},
			"mid":  {Enabled: true, Weight: 100},
			"high": {Enabled: true, Weight: 200},
		}),
	})

	res := a.Lookup(criteriaFor("~anything"))
	require.Len(t, res.Results, 3)
	assert.Equal(t, []string{"high", "mid", "low"}, names(res.Results))
	assert.Equal(t, []int{200, 100, 50}, []int{
		res.Results[0].Score(), res.Results[1].Score(), res.Results[2].Score(),
	})
}

func TestAggregate_SimpleKeepsModuleOrder(t *testing.T) {
	first := &stubModule{name: "first", items: []string{"abc"}, raw: 1}
	second := &stubModule{name: "second", items: []string{"abc"}, raw: 1}

	a := NewAggregateLookup(AggregateConfig{
		Modules: []Module{first, second},
		Settings: settingsMap(map[string]ModuleSettings{
			"first":  {Enabled: true, Weight: 1},
			"second": {Enabled: true, Weight: 500},
		}),
	})

	res := a.Lookup(criteriaFor("'abc"))
	require.Len(t, res.Results, 2)
	assert.Equal(t, "first", res.Results[0].Category())
	assert.Equal(t, "second", res.Results[1].Category())
}

func TestAggregate_OrderAndEnabled(t *testing.T) {
	a1 := &stubModule{name: "a", items: []string{"x"}, raw: 1}
	b1 := &stubModule{name: "b", items: []string{"x"}, raw: 1}
	c1 := &stubModule{name: "c", items: []string{"x"}, raw: 1}

	a := NewAggregateLookup(AggregateConfig{
		Modules: []Module{a1, b1, c1},
		Settings: settingsMap(map[string]ModuleSettings{
			"a": {Enabled: true, Weight: 100, Order: 2},
			"b": {Enabled: false, Weight: 100},
			"c": {Enabled: true, Weight: 100, Order: 1},
		}),
	})

	res := a.Lookup(criteriaFor("x"))
	require.Len(t, res.Results, 2)
	assert.Equal(t, "c", res.Results[0].Category(), "lower order runs first and ties keep it first")
	assert.Equal(t, "a", res.Results[1].Category())
	assert.Zero(t, b1.calls, "disabled module is never searched")
}

func TestAggregate_ModuleErrorDoesNotHideOthers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	broken := &stubModule{name: "broken", err: errors.New("catalog unavailable")}
	ok := &stubModule{name: "ok", items: []string{"duty finder"}}

	a := NewAggregateLookup(AggregateConfig{
		Modules: []Module{broken, ok},
		Logger:  logger,
	})

	res := a.Lookup(criteriaFor("dufi"))
	require.Len(t, res.Results, 1)
	assert.Equal(t, "duty finder", res.Results[0].Name())
	assert.Contains(t, buf.String(), "catalog unavailable")
	assert.Contains(t, buf.String(), `"module":"broken"`)
}

func TestAggregate_LaterModuleRunsPastLimit(t *testing.T) {
	big := &stubModule{name: "big", items: items("item", ResultSoftLimit+10), raw: 1}
	late := &stubModule{name: "late", items: []string{"late"}, raw: 50}

	a := NewAggregateLookup(AggregateConfig{Modules: []Module{big, late}})
	res := a.Lookup(criteriaFor("item"))

	assert.Equal(t, 1, late.calls)
	assert.Equal(t, ResultSoftLimit+2, len(res.Results), "big stops itself once over the limit")
	require.NotEmpty(t, res.Results)
	assert.Equal(t, "late", res.Results[0].Name())
	assert.Equal(t, 5000, res.Results[0].Score())
}

func TestAggregate_DutyFinder(t *testing.T) {
	m := &stubModule{name: "duties", items: []string{"Duty Finder", "Party Finder"}}
	a := NewAggregateLookup(AggregateConfig{Modules: []Module{m}})

	res := a.Lookup(criteriaFor("dufi"))
	require.Len(t, res.Results, 1)
	assert.Equal(t, "Duty Finder", res.Results[0].Name())
	assert.Positive(t, res.Results[0].Score())

	assert.Empty(t, a.Lookup(criteriaFor("'dufi")).Results)
}

func TestAggregate_EmptyQuery(t *testing.T) {
	m := &stubModule{name: "m", items: []string{"alpha"}}

	t.Run("no history and no hint", func(t *testing.T) {
		a := NewAggregateLookup(AggregateConfig{
			Modules:        []Module{m},
			History:        NewHistory(nil),
			HistoryEnabled: func() bool { return false },
		})
		assert.Empty(t, a.Lookup(criteriaFor("")).Results)
	})

	t.Run("rotating hint", func(t *testing.T) {
		a := NewAggregateLookup(AggregateConfig{
			Modules: []Module{m},
			Hints:   []string{"first", "second"},
		})
		assert.Equal(t, []string{"first"}, names(a.Lookup(criteriaFor("")).Results))
		a.OnOpen()
		assert.Equal(t, []string{"second"}, names(a.Lookup(criteriaFor("")).Results))
		a.OnOpen()
		assert.Equal(t, []string{"first"}, names(a.Lookup(criteriaFor("")).Results))
	})

	t.Run("history before hint", func(t *testing.T) {
		h := NewHistory(nil)
		a := NewAggregateLookup(AggregateConfig{
			Modules: []Module{m},
			History: h,
			Hints:   []string{"tip"},
		})
		c := criteriaFor("alp")
		res := a.Lookup(c)
		require.Len(t, res.Results, 1)
		a.OnSelected(c, res.Results[0])

		assert.Equal(t, []string{"alpha"}, names(a.Lookup(criteriaFor("")).Results))
	})
}

func TestAggregate_OnSelectedSkipsHints(t *testing.T) {
	h := NewHistory(nil)
	a := NewAggregateLookup(AggregateConfig{History: h, Hints: []string{"tip"}})

	a.OnSelected(criteriaFor("tip"), &HintResult{Text: "tip"})
	assert.Zero(t, h.Len())
}

func TestAggregate_Placeholder(t *testing.T) {
	assert.Equal(t, "Type to search", NewAggregateLookup(AggregateConfig{}).Placeholder())
	assert.Equal(t, "Find", NewAggregateLookup(AggregateConfig{Placeholder: "Find"}).Placeholder())
}

func TestAggregate_SetHints(t *testing.T) {
	a := NewAggregateLookup(AggregateConfig{Hints: []string{"one", "two", "three"}})
	a.OnOpen()
	a.OnOpen()

	a.SetHints([]string{"only"})
	res := a.Lookup(criteriaFor(""))
	require.Len(t, res.Results, 1)
	assert.Equal(t, "only", res.Results[0].Name())
}
