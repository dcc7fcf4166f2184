// Package normalize turns display text into the canonical "searchable" form
// that every palette module scores against.
//
// A single Normalizer is shared for the lifetime of a session. Kana folding is
// chosen per call because individual queries may or may not contain kana.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Katakana range folded onto hiragana. The two blocks are laid out in
// parallel, 0x60 code points apart.
const (
	katakanaFirst = '\u30a1' // ァ
	katakanaLast  = '\u30f6' // ヶ
	kanaOffset    = 0x60
)

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithSanitizer replaces the locale sanitizer applied before folding.
// A nil transformer disables sanitizing.
func WithSanitizer(t transform.Transformer) Option {
	return func(n *Normalizer) {
		n.sanitizer = t
	}
}

// Normalizer canonicalizes text for matching.
type Normalizer struct {
	sanitizer transform.Transformer
}

// DefaultSanitizer applies compatibility composition (full-width letters,
// half-width kana, ligatures) and removes invisible formatting characters
// such as soft hyphens and zero-width joiners.
func DefaultSanitizer() transform.Transformer {
	return transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.Cf)))
}

// New creates a Normalizer with the default sanitizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{sanitizer: DefaultSanitizer()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Searchable returns the canonical form of text: sanitized, apostrophes
// stripped and lowercased. When foldKana is set, katakana is folded onto
// hiragana so that both scripts compare equal.
func (n *Normalizer) Searchable(text string, foldKana bool) string {
	if text == "" {
		return ""
	}
	text = n.sanitize(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\'' || r == '\u2019':
			continue
		case foldKana && r >= katakanaFirst && r <= katakanaLast:
			b.WriteRune(r - kanaOffset)
		case unicode.Is(unicode.Hiragana, r):
			// Already in folded form; kana has no case.
			b.WriteRune(r)
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func (n *Normalizer) sanitize(text string) string {
	if n.sanitizer == nil {
		return text
	}
	out, _, err := transform.String(n.sanitizer, text)
	if err != nil {
		return text
	}
	return out
}

// SearchableASCII lowercases ASCII letters byte by byte. It is meant for
// internal literal labels that never need kana folding or sanitizing.
func SearchableASCII(text string) string {
	b := []byte(text)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// ContainsKana reports whether text contains any hiragana or katakana rune.
func ContainsKana(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana) {
			return true
		}
	}
	return false
}
