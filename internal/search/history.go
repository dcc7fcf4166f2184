package search

// HistoryCapacity is the number of selections History remembers.
const HistoryCapacity = 5

// HistoryEntry is one remembered selection.
type HistoryEntry struct {
	Mode     Mode
	Criteria Criteria
	Result   Result
}

// Replayer runs a query against the lookup registered for a mode without
// touching the active mode. Root implements it.
type Replayer interface {
	LookupMode(mode Mode, c Criteria) (LookupResult, error)
}

// History is a bounded most-recently-used list of selections. Entries are
// revalidated by replaying their query whenever they are read, so items that
// have since disappeared are dropped.
//
// History is owned by the palette's driving goroutine and is not safe for
// concurrent use.
type History struct {
	replayer  Replayer
	entries   []HistoryEntry // front is most recent
	replaying bool
}

// NewHistory creates an empty History. replay may be nil and supplied later
// with SetReplayer, since the replayer usually owns the lookup that owns the
// History.
func NewHistory(replay Replayer) *History {
	return &History{replayer: replay}
}

// SetReplayer sets the replayer used by Entries.
func (h *History) SetReplayer(replay Replayer) {
	h.replayer = replay
}

// Add records that r was selected for c in mode. A result that is already
// remembered moves to the front instead of being stored twice.
func (h *History) Add(mode Mode, c Criteria, r Result) {
	if r == nil {
		return
	}

	for i, e := range h.entries {
		if !SameItem(e.Result, r) {
			continue
		}
		e.Mode = mode
		e.Result = r
		if !c.IsEmpty() {
			e.Criteria = c
		}
		copy(h.entries[1:i+1], h.entries[:i])
		h.entries[0] = e
		return
	}

	// Without a query there is nothing to replay.
	if c.IsEmpty() {
		return
	}

	h.entries = append(h.entries, HistoryEntry{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = HistoryEntry{Mode: mode, Criteria: c, Result: r}
	if len(h.entries) > HistoryCapacity {
		h.entries = h.entries[:HistoryCapacity]
	}
}

// Entries returns the remembered selections, most recent first. Each entry
// is replayed and kept only when the fresh results still contain its item;
// the kept entry carries the fresh result. Entries returns nil while a replay
// is already in progress.
func (h *History) Entries() []HistoryEntry {
	if h.replaying {
		return nil
	}
	if h.replayer == nil {
		return append([]HistoryEntry(nil), h.entries...)
	}

	h.replaying = true
	defer func() { h.replaying = false }()

	kept := h.entries[:0]
	for _, e := range h.entries {
		bag, err := h.replayer.LookupMode(e.Mode, e.Criteria)
		if err != nil {
			continue
		}
		fresh, ok := bag.Find(e.Result)
		if !ok {
			continue
		}
		e.Result = fresh
		kept = append(kept, e)
	}
	// Drop references held by the tail.
	clear(h.entries[len(kept):])
	h.entries = kept

	return append([]HistoryEntry(nil), h.entries...)
}

// Len returns the number of stored entries without replaying them.
func (h *History) Len() int {
	return len(h.entries)
}

// Clear forgets every entry.
func (h *History) Clear() {
	h.entries = nil
}
