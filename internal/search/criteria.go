package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/runger/palette/internal/fuzzy"
	"github.com/runger/palette/internal/normalize"
)

// Criteria is the immutable, fully normalized description of one query.
// Every module scoring a query must use the same Criteria value; Match is
// never re-derived downstream.
type Criteria struct {
	Raw          string     // input exactly as typed
	Clean        string     // Raw trimmed
	Semantic     string     // sigils stripped, case preserved, for literal echo
	Match        string     // normalized Semantic, used for scoring
	MatchMode    fuzzy.Mode // configured default or a sigil override
	ContainsKana bool       // drives kana folding in Match
	Override     Mode       // requested lookup override, ModeNone when absent
}

// IsEmpty reports whether there is nothing to score.
func (c Criteria) IsEmpty() bool {
	return c.Match == ""
}

// HasOverride reports whether the query requests a lookup override.
func (c Criteria) HasOverride() bool {
	return c.Override != ModeNone
}

// Settings is the part of the configuration surface read by State on every
// call. A zero sigil disables it.
type Settings struct {
	MatchMode       fuzzy.Mode
	SimpleSigil     rune
	FuzzySigil      rune
	FuzzyPartsSigil rune
	SwitchSigil     rune // switches ModeDefault to SwitchMode for one query
	SwitchMode      Mode
}

// DefaultSettings returns the settings used when no configuration is loaded.
func DefaultSettings() Settings {
	return Settings{
		MatchMode:       fuzzy.Fuzzy,
		SimpleSigil:     '\'',
		FuzzySigil:      '~',
		FuzzyPartsSigil: '+',
		SwitchSigil:     '?',
		SwitchMode:      ModeWebSearch,
	}
}

// State turns raw input buffers into Criteria. It is owned by one palette
// session and is not safe for concurrent use.
type State struct {
	normalizer *normalize.Normalizer
	settings   func() Settings
	current    Criteria
}

// NewState creates a State. settings is consulted on every Set so that a
// configuration reload applies to the next keystroke.
func NewState(n *normalize.Normalizer, settings func() Settings) *State {
	if n == nil {
		n = normalize.New()
	}
	if settings == nil {
		settings = DefaultSettings
	}
	return &State{normalizer: n, settings: settings}
}

// Current returns the Criteria produced by the last Set.
func (s *State) Current() Criteria {
	return s.current
}

// Set parses raw for a palette whose base lookup mode is base and stores the
// resulting snapshot.
func (s *State) Set(base Mode, raw string) Criteria {
	cfg := s.settings()
	c := Criteria{Raw: raw, MatchMode: cfg.MatchMode}

	c.Clean = strings.TrimSpace(raw)
	if c.Clean == "" {
		s.current = c
		return c
	}

	term := c.Clean

	// The switch sigil is ignored outside the default mode so that a
	// switched lookup cannot trigger another switch.
	if base == ModeDefault && cfg.SwitchSigil != 0 {
		if rest, ok := stripSigil(term, cfg.SwitchSigil); ok {
			term = rest
			c.Override = cfg.SwitchMode
		}
	}

	for _, ms := range []struct {
		sigil rune
		mode  fuzzy.Mode
	}{
		{cfg.FuzzyPartsSigil, fuzzy.FuzzyParts},
		{cfg.FuzzySigil, fuzzy.Fuzzy},
		{cfg.SimpleSigil, fuzzy.Simple},
	} {
		if ms.sigil == 0 {
			continue
		}
		if rest, ok := stripSigil(term, ms.sigil); ok {
			term = rest
			c.MatchMode = ms.mode
			break
		}
	}

	c.Semantic = term
	c.ContainsKana = normalize.ContainsKana(term)
	c.Match = s.normalizer.Searchable(term, c.ContainsKana)

	s.current = c
	return c
}

func stripSigil(term string, sigil rune) (string, bool) {
	r, size := utf8.DecodeRuneInString(term)
	if size == 0 || r != sigil {
		return term, false
	}
	return strings.TrimLeftFunc(term[size:], unicode.IsSpace), true
}
