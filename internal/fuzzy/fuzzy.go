// Package fuzzy scores a normalized query against normalized candidate
// strings. A score of 0 always means "no match"; every successful match
// scores at least 1.
//
// The fuzzy score rewards matches that start early, sit on word borders and
// run contiguously, and penalizes skipped characters:
//
//	100 + len(needle)*3 + borders*3 + consecutive*5 - start - gaps*2 (+5 when start == 0)
//
// Greedy forward alignment can lock onto an early, loosely spaced match, so
// when it leaves gaps a right-aligned reverse alignment is scored as well and
// the better of the two wins.
package fuzzy

import (
	"strings"
	"unicode"
	"unicode/utf8"

	fuzzysearch "github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	baseScore        = 100
	needleCharBonus  = 3
	borderBonus      = 3
	consecutiveBonus = 5
	gapPenalty       = 2
	startBonus       = 5
)

type segment struct {
	text  string
	runes []rune
}

func newSegment(s string) segment {
	return segment{text: s, runes: []rune(s)}
}

// Matcher compares one needle against many haystacks. It is built once per
// query and shared by every module scoring that query.
type Matcher struct {
	needle   segment
	segments []segment
	mode     Mode
}

// New creates a Matcher. A FuzzyParts needle with fewer than two
// whitespace-separated segments behaves as Fuzzy.
func New(needle string, mode Mode) *Matcher {
	m := &Matcher{needle: newSegment(needle), mode: mode}
	if mode == FuzzyParts {
		parts := strings.FieldsFunc(needle, unicode.IsSpace)
		if len(parts) < 2 {
			m.mode = Fuzzy
		} else {
			m.segments = make([]segment, len(parts))
			for i, p := range parts {
				m.segments[i] = newSegment(p)
			}
		}
	}
	return m
}

// Mode returns the effective match mode.
func (m *Matcher) Mode() Mode {
	return m.mode
}

// Needle returns the needle the matcher was built with.
func (m *Matcher) Needle() string {
	return m.needle.text
}

// Matches scores haystack against the needle.
func (m *Matcher) Matches(haystack string) int {
	if m.needle.text == "" || haystack == "" {
		return 0
	}

	switch m.mode {
	case Simple:
		if strings.Contains(haystack, m.needle.text) {
			return 1
		}
		return 0

	case FuzzyParts:
		h := []rune(haystack)
		total := 0
		for _, seg := range m.segments {
			s := scoreSegment(seg, h)
			if s == 0 {
				return 0
			}
			total += s
		}
		return total

	default:
		return scoreSegment(m.needle, []rune(haystack))
	}
}

// MatchesAny returns the best score over all haystacks.
func (m *Matcher) MatchesAny(haystacks ...string) int {
	best := 0
	for _, h := range haystacks {
		if s := m.Matches(h); s > best {
			best = s
		}
	}
	return best
}

// Candidate reports whether display text that has not been normalized yet
// can match. Normalizing ASCII text only lowercases it and deletes
// apostrophes, so a needle segment that is not a case-folded subsequence of
// the raw text cannot match its normalized form either. Non-ASCII text always
// passes.
func (m *Matcher) Candidate(raw string) bool {
	if m.needle.text == "" || raw == "" {
		return false
	}
	if !isASCII(raw) {
		return true
	}
	segs := m.segments
	if len(segs) == 0 {
		segs = []segment{m.needle}
	}
	for _, seg := range segs {
		if !fuzzysearch.MatchFold(seg.text, raw) {
			return false
		}
	}
	return true
}

// CandidateAny reports whether any of texts passes Candidate.
func (m *Matcher) CandidateAny(texts ...string) bool {
	for _, t := range texts {
		if m.Candidate(t) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// scoreSegment returns the better of the forward and reverse alignment
// scores of one needle segment, or 0 when it is not a subsequence.
func scoreSegment(seg segment, h []rune) int {
	n := seg.runes
	if len(n) == 0 || len(n) > len(h) {
		return 0
	}

	fwd, ok := forwardPositions(n, h)
	if !ok {
		return 0
	}
	fa := measure(h, fwd)
	best := fa.score(len(n))
	if fa.gaps == 0 {
		return best
	}

	rev, ok := reversePositions(n, h, fwd[len(fwd)-1])
	if !ok {
		return best
	}
	if s := measure(h, rev).score(len(n)); s > best {
		best = s
	}
	return best
}

// forwardPositions greedily matches each needle rune at the earliest
// position after the previous match.
func forwardPositions(n, h []rune) ([]int, bool) {
	pos := make([]int, len(n))
	next := 0
	for i, r := range n {
		p := indexRune(h, r, next)
		if p < 0 {
			return nil, false
		}
		pos[i] = p
		next = p + 1
	}
	return pos, true
}

// reversePositions anchors the last needle rune at last and walks the needle
// backward, matching each rune at the latest position before the previous one.
func reversePositions(n, h []rune, last int) ([]int, bool) {
	pos := make([]int, len(n))
	pos[len(n)-1] = last
	for i := len(n) - 2; i >= 0; i-- {
		p := lastIndexRune(h, n[i], pos[i+1]-1)
		if p < 0 {
			return nil, false
		}
		pos[i] = p
	}
	return pos, true
}

func indexRune(h []rune, r rune, from int) int {
	for i := from; i < len(h); i++ {
		if h[i] == r {
			return i
		}
	}
	return -1
}

func lastIndexRune(h []rune, r rune, from int) int {
	for i := from; i >= 0; i-- {
		if h[i] == r {
			return i
		}
	}
	return -1
}

// alignment summarizes where a needle landed in a haystack.
type alignment struct {
	start       int
	gaps        int
	consecutive int
	borders     int
}

func measure(h []rune, pos []int) alignment {
	a := alignment{start: pos[0]}
	for i, p := range pos {
		if p == 0 || !isWordRune(h[p-1]) {
			a.borders++
		}
		if i == 0 {
			continue
		}
		if gap := p - pos[i-1] - 1; gap == 0 {
			a.consecutive++
		} else {
			a.gaps += gap
		}
	}
	return a
}

func (a alignment) score(needleLen int) int {
	s := baseScore +
		needleLen*needleCharBonus +
		a.borders*borderBonus +
		a.consecutive*consecutiveBonus -
		a.start -
		a.gaps*gapPenalty
	if a.start == 0 {
		s += startBonus
	}
	return max(s, 1)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
