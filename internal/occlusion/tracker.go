package occlusion

// Tracker holds the live blocker counters of one simulation over a Graph.
// Resolving a tile (moving it to the buffer or clearing it) releases its
// outgoing edges exactly once.
type Tracker struct {
	g         *Graph
	remaining []int32
	resolved  []bool
}

// NewTracker starts a tracker with every tile unresolved.
func NewTracker(g *Graph) *Tracker {
	remaining := make([]int32, g.Len())
	copy(remaining, g.inDegree)
	return &Tracker{
		g:         g,
		remaining: remaining,
		resolved:  make([]bool, g.Len()),
	}
}

// Remaining returns the number of unresolved blockers of h.
func (t *Tracker) Remaining(h int) int {
	return int(t.remaining[h])
}

// Free reports whether h has no unresolved blockers.
func (t *Tracker) Free(h int) bool {
	return t.remaining[h] == 0
}

// Resolved reports whether h was already resolved.
func (t *Tracker) Resolved(h int) bool {
	return t.resolved[h]
}

// Resolve releases h's outgoing edges and calls onFree for each tile whose
// last blocker this was. Resolving a tile twice is a no-op and returns false.
func (t *Tracker) Resolve(h int, onFree func(int)) bool {
	if t.resolved[h] {
		return false
	}
	t.resolved[h] = true

	for _, b := range t.g.Blocks(h) {
		if t.remaining[b] == 0 {
			continue
		}
		t.remaining[b]--
		if t.remaining[b] == 0 && onFree != nil {
			onFree(int(b))
		}
	}
	return true
}

// LiveOutDegree returns how many tiles blocked by h are still unresolved.
// A resolved tile has released its edges and reports 0.
func (t *Tracker) LiveOutDegree(h int) int {
	if t.resolved[h] {
		return 0
	}
	n := 0
	for _, b := range t.g.Blocks(h) {
		if !t.resolved[b] {
			n++
		}
	}
	return n
}
