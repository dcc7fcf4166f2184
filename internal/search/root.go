package search

import (
	"fmt"
	"log/slog"
)

// Root is the mode state machine. It owns one lookup per mode, a persistent
// base mode and at most one override, and delegates every Lookup call to
// whichever mode is active.
//
// An override is either query scoped, installed by Lookup because the
// criteria asked for it and cleared as soon as a later criteria stops asking,
// or explicit, installed by SetOverride or EnterMode and kept until cleared.
type Root struct {
	lookups map[Mode]Lookup
	logger  *slog.Logger

	base              Mode
	override          Mode
	overrideFromQuery bool
}

// NewRoot creates a Root whose base mode is base. lookups must contain a
// lookup for base.
func NewRoot(base Mode, lookups map[Mode]Lookup, logger *slog.Logger) (*Root, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Root{
		lookups: make(map[Mode]Lookup, len(lookups)),
		logger:  logger,
	}
	for mode, l := range lookups {
		if err := r.Register(mode, l); err != nil {
			return nil, err
		}
	}
	if err := r.SetBase(base); err != nil {
		return nil, fmt.Errorf("new root: %w", err)
	}
	return r, nil
}

// Register installs l as the lookup for mode, replacing any previous one.
func (r *Root) Register(mode Mode, l Lookup) error {
	if mode == ModeNone {
		return fmt.Errorf("register: %w: %s", ErrUnknownMode, mode)
	}
	if l == nil {
		return fmt.Errorf("register %s: nil lookup", mode)
	}
	r.lookups[mode] = l
	return nil
}

// Base returns the base mode.
func (r *Root) Base() Mode {
	return r.base
}

// HasOverride reports whether an override is active.
func (r *Root) HasOverride() bool {
	return r.override != ModeNone
}

// ActiveMode returns the override when present, otherwise the base.
func (r *Root) ActiveMode() Mode {
	if r.override != ModeNone {
		return r.override
	}
	return r.base
}

// InputMode returns the mode that input should be parsed for. A query-scoped
// override is not reported, so the sigil that requested it keeps being seen.
func (r *Root) InputMode() Mode {
	if r.override != ModeNone && !r.overrideFromQuery {
		return r.override
	}
	return r.base
}

// SetBase replaces the base mode. The override, if any, is left in place.
func (r *Root) SetBase(mode Mode) error {
	if err := r.check(mode); err != nil {
		return err
	}
	r.base = mode
	return nil
}

// SetOverride installs mode as an explicit override.
func (r *Root) SetOverride(mode Mode) error {
	if err := r.check(mode); err != nil {
		return err
	}
	r.override = mode
	r.overrideFromQuery = false
	return nil
}

// ClearOverride removes the override, reverting to the base mode.
func (r *Root) ClearOverride() {
	r.override = ModeNone
	r.overrideFromQuery = false
}

// PromoteOverride makes the current override the base mode. It is a no-op
// without an override.
func (r *Root) PromoteOverride() {
	if r.override == ModeNone {
		return
	}
	r.base = r.override
	r.ClearOverride()
}

// EnterMode installs l as the lookup for mode and makes mode the explicit
// override. Entering a mode while an explicit override is active returns
// ErrNestedOverride; promote the override first. A query-scoped override is
// replaced.
func (r *Root) EnterMode(mode Mode, l Lookup) error {
	if r.override != ModeNone && !r.overrideFromQuery {
		return fmt.Errorf("enter %s from %s: %w", mode, r.override, ErrNestedOverride)
	}
	if err := r.Register(mode, l); err != nil {
		return err
	}
	l.OnOpen()
	return r.SetOverride(mode)
}

// Lookup applies the override requested by c, if any, and delegates to the
// active lookup.
func (r *Root) Lookup(c Criteria) LookupResult {
	r.applyQueryOverride(c)

	l, err := r.active()
	if err != nil {
		r.logger.Error("root lookup failed", "mode", r.ActiveMode().String(), "error", err)
		return LookupResult{}
	}
	return l.Lookup(c)
}

// LookupMode runs c against the lookup registered for mode without changing
// the active mode.
func (r *Root) LookupMode(mode Mode, c Criteria) (LookupResult, error) {
	l, ok := r.lookups[mode]
	if !ok {
		return LookupResult{}, fmt.Errorf("lookup %s: %w", mode, ErrUnknownMode)
	}
	return l.Lookup(c), nil
}

// Placeholder returns the active lookup's placeholder.
func (r *Root) Placeholder() string {
	l, err := r.active()
	if err != nil {
		return ""
	}
	return l.Placeholder()
}

// OnOpen notifies the active lookup that the palette became visible.
func (r *Root) OnOpen() {
	if l, err := r.active(); err == nil {
		l.OnOpen()
	}
}

// OnSelected notifies the active lookup that res was selected for c.
func (r *Root) OnSelected(c Criteria, res Result) {
	if l, err := r.active(); err == nil {
		l.OnSelected(c, res)
	}
}

func (r *Root) applyQueryOverride(c Criteria) {
	switch {
	case c.HasOverride():
		if r.override != ModeNone && !r.overrideFromQuery {
			return
		}
		if err := r.check(c.Override); err != nil {
			r.logger.Warn("root: ignoring requested override", "mode", c.Override.String(), "error", err)
			return
		}
		r.override = c.Override
		r.overrideFromQuery = true
	case r.overrideFromQuery:
		r.ClearOverride()
	}
}

func (r *Root) active() (Lookup, error) {
	mode := r.ActiveMode()
	l, ok := r.lookups[mode]
	if !ok {
		return nil, fmt.Errorf("active %s: %w", mode, ErrUnknownMode)
	}
	return l, nil
}

func (r *Root) check(mode Mode) error {
	if _, ok := r.lookups[mode]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMode, mode)
	}
	return nil
}
