package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/normalize"
)

func TestStateSet(t *testing.T) {
	tests := []struct {
		name     string
		base     Mode
		raw      string
		clean    string
		semantic string
		match    string
		mode     fuzzy.Mode
		override Mode
		kana     bool
	}{
		{"plain", ModeDefault, "  Duty Finder ", "Duty Finder", "Duty Finder", "duty finder", fuzzy.Fuzzy, ModeNone, false},
		{"simple sigil", ModeDefault, "'Duty", "'Duty", "Duty", "duty", fuzzy.Simple, ModeNone, false},
		{"fuzzy parts sigil", ModeDefault, "+fin duty", "+fin duty", "fin duty", "fin duty", fuzzy.FuzzyParts, ModeNone, false},
		{"whitespace after sigil", ModeDefault, "~  dufi", "~  dufi", "dufi", "dufi", fuzzy.Fuzzy, ModeNone, false},
		{"switch sigil", ModeDefault, "?Weather", "?Weather", "Weather", "weather", fuzzy.Fuzzy, ModeWebSearch, false},
		{"switch then match sigil", ModeDefault, "?'abc", "?'abc", "abc", "abc", fuzzy.Simple, ModeWebSearch, false},
		{"switch ignored outside default", ModeWebSearch, "?Weather", "?Weather", "?Weather", "?weather", fuzzy.Fuzzy, ModeNone, false},
		{"only first match sigil is stripped", ModeDefault, "+'ab", "+'ab", "'ab", "ab", fuzzy.FuzzyParts, ModeNone, false},
		{"kana folded", ModeDefault, "カタ", "カタ", "カタ", "かた", fuzzy.Fuzzy, ModeNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestState().Set(tt.base, tt.raw)
			assert.Equal(t, tt.raw, c.Raw)
			assert.Equal(t, tt.clean, c.Clean)
			assert.Equal(t, tt.semantic, c.Semantic)
			assert.Equal(t, tt.match, c.Match)
			assert.Equal(t, tt.mode, c.MatchMode)
			assert.Equal(t, tt.override, c.Override)
			assert.Equal(t, tt.kana, c.ContainsKana)
		})
	}
}

func TestStateSet_Empty(t *testing.T) {
	s := newTestState()
	for _, raw := range []string{"", "   ", "\t\n"} {
		c := s.Set(ModeDefault, raw)
		assert.True(t, c.IsEmpty())
		assert.False(t, c.HasOverride())
		assert.Empty(t, c.Clean)
		assert.Equal(t, c, s.Current())
	}
}

func TestStateSet_SigilOnly(t *testing.T) {
	c := newTestState().Set(ModeDefault, "?")
	assert.Equal(t, ModeWebSearch, c.Override)
	assert.True(t, c.IsEmpty())
}

func TestStateSet_SettingsReadPerCall(t *testing.T) {
	cfg := DefaultSettings()
	s := NewState(normalize.New(), func() Settings { return cfg })

	assert.Equal(t, fuzzy.Fuzzy, s.Set(ModeDefault, "abc").MatchMode)

	cfg.MatchMode = fuzzy.Simple
	cfg.SimpleSigil = 0
	c := s.Set(ModeDefault, "'abc")
	assert.Equal(t, fuzzy.Simple, c.MatchMode)
	assert.Equal(t, "'abc", c.Semantic, "disabled sigil is kept")
	assert.Equal(t, "abc", c.Match, "apostrophes never reach the match string")
}

func TestNewState_Defaults(t *testing.T) {
	s := NewState(nil, nil)
	require.NotNil(t, s)
	assert.Equal(t, "abc", s.Set(ModeDefault, "ABC").Match)
}
