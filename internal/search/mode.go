package search

import (
	"errors"
	"fmt"
)

// Mode identifies which lookup is authoritative for the palette.
// The set is open: hosts may declare additional modes above ModeChooser.
type Mode int

const (
	// ModeNone means "no mode"; it is only valid as an absent override.
	ModeNone Mode = iota
	// ModeDefault aggregates every configured module.
	ModeDefault
	// ModeWebSearch turns the query into web lookups.
	ModeWebSearch
	// ModeChooser disambiguates a single previously selected result.
	ModeChooser
)

// ErrUnknownMode is returned when a mode has no registered lookup.
var ErrUnknownMode = errors.New("unknown lookup mode")

// ErrNestedOverride is returned when a mode is entered while another
// override is already active. Promote the override to the base first.
var ErrNestedOverride = errors.New("an override mode is already active")

// String returns a readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeDefault:
		return "default"
	case ModeWebSearch:
		return "web"
	case ModeChooser:
		return "chooser"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses a mode name as produced by String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "default":
		return ModeDefault, nil
	case "web":
		return ModeWebSearch, nil
	case "chooser":
		return ModeChooser, nil
	default:
		return ModeNone, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}
