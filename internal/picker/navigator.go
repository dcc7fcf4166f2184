package picker

import "github.com/runger/palette/internal/search"

// navigator is the search.Navigator handed to selected results. Root keeps a
// single override, so entering a mode from inside an explicitly entered one
// first promotes that mode to the base. The base it replaced is remembered
// for Esc.
type navigator struct {
	root    *search.Root
	restore search.Mode // base before the first promotion; ModeNone if none
}

func (n *navigator) EnterMode(mode search.Mode, l search.Lookup) error {
	if n.explicitOverride() {
		if n.restore == search.ModeNone {
			n.restore = n.root.Base()
		}
		n.root.PromoteOverride()
	}
	return n.root.EnterMode(mode, l)
}

func (n *navigator) SetBase(mode search.Mode) error {
	return n.root.SetBase(mode)
}

// explicitOverride reports whether the override was entered by a result
// rather than requested by a sigil in the query.
func (n *navigator) explicitOverride() bool {
	return n.root.HasOverride() && n.root.InputMode() == n.root.ActiveMode()
}

// back leaves every entered mode and restores the original base. It reports
// whether there was anything to leave.
func (n *navigator) back() bool {
	left := false
	if n.restore != search.ModeNone {
		if err := n.root.SetBase(n.restore); err == nil {
			left = true
		}
		n.restore = search.ModeNone
	}
	if n.explicitOverride() {
		left = true
	}
	if left {
		n.root.ClearOverride()
	}
	return left
}
