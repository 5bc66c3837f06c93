package navigation

// Snapshot is what a history entry stores.
type Snapshot struct {
	Registry   string
	Repository string
}

// History is a linear back/forward stack. Pushing while not at the newest
// entry drops the forward entries.
type History struct {
	entries []Snapshot
	index   int
}

func NewHistory(initial State) *History {
	return &History{entries: []Snapshot{initial.Snapshot()}}
}

// Push records s as the newest entry, even when it repeats the current one.
func (h *History) Push(s State) {
	h.entries = append(h.entries[:h.index+1], s.Snapshot())
	h.index = len(h.entries) - 1
}

// Peek returns the entry delta steps away without moving.
func (h *History) Peek(delta int) (Snapshot, bool) {
	target := h.index + delta
	if target < 0 || target >= len(h.entries) {
		return Snapshot{}, false
	}
	return h.entries[target], true
}

// Move shifts the cursor by delta. It reports false, and does nothing, when
// the target is out of range.
func (h *History) Move(delta int) bool {
	target := h.index + delta
	if target < 0 || target >= len(h.entries) {
		return false
	}
	h.index = target
	return true
}

func (h *History) CanBack() bool {
	return h.index > 0
}

func (h *History) CanForward() bool {
	return h.index < len(h.entries)-1
}

func (h *History) Current() Snapshot {
	return h.entries[h.index]
}

func (h *History) Len() int {
	return len(h.entries)
}
