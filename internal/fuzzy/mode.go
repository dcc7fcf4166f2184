package fuzzy

import "fmt"

// Mode selects how a needle is compared against a haystack.
type Mode int

const (
	// Simple accepts literal substrings only and scores every hit as 1.
	Simple Mode = iota
	// Fuzzy accepts subsequences and scores them by alignment quality.
	Fuzzy
	// FuzzyParts splits the needle on whitespace and requires every
	// segment to match independently, in any order.
	FuzzyParts
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case Simple:
		return "simple"
	case Fuzzy:
		return "fuzzy"
	case FuzzyParts:
		return "fuzzy_parts"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a configuration name. Unknown names are an error.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "simple":
		return Simple, nil
	case "fuzzy":
		return Fuzzy, nil
	case "fuzzy_parts":
		return FuzzyParts, nil
	default:
		return Simple, fmt.Errorf("unknown match mode %q (must be simple, fuzzy, or fuzzy_parts)", s)
	}
}
