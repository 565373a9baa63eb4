package hybridastar

import "container/heap"

// No ecosystem priority-queue library appears anywhere in the retrieved
// corpus (the teacher's own nearestNeighbor.go uses a channel/goroutine
// fan-in for k-NN, not a heap), so this uses container/heap directly, the
// same way the teacher reaches for stdlib containers where no domain
// library covers the concern.

// pqEntry is one live-or-stale entry in the open set: a node plus the
// insertion sequence used to break ties between equal-f entries in FIFO
// order, per spec.md §5's determinism requirement.
type pqEntry struct {
	node  *Node3d
	f     float64
	seq   int
	index int
}

type nodeHeap []*pqEntry

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}

func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *nodeHeap) Push(x interface{}) {
	e := x.(*pqEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// openSet is a min-priority queue over Node3d keyed by f = g + h, indexed
// by GridIndex.key() so a cheaper re-discovery of an already-open cell can
// find and replace the stale entry. Popped-then-superseded entries are
// left in the heap and skipped lazily on Pop, avoiding a decrease-key
// implementation.
type openSet struct {
	h       nodeHeap
	best    map[gridKey]*pqEntry
	nextSeq int
}

func newOpenSet() *openSet {
	return &openSet{best: make(map[gridKey]*pqEntry)}
}

func (o *openSet) Len() int { return len(o.best) }

// Push drops node if a live entry for its cell already has a lower or
// equal f; otherwise it inserts node, superseding any costlier live entry
// for the cell by pushing a fresh entry and letting the old one go stale.
func (o *openSet) Push(n *Node3d) {
	key := n.Index.key()
	f := n.TotalCost()
	if existing, ok := o.best[key]; ok && existing.f <= f {
		return
	}
	e := &pqEntry{node: n, f: f, seq: o.nextSeq}
	o.nextSeq++
	o.best[key] = e
	heap.Push(&o.h, e)
}

// Pop removes and returns the lowest-f live node, skipping stale entries
// left behind by Push overwrites.
func (o *openSet) Pop() *Node3d {
	for o.h.Len() > 0 {
		e := heap.Pop(&o.h).(*pqEntry)
		key := e.node.Index.key()
		if current, ok := o.best[key]; ok && current == e {
			delete(o.best, key)
			return e.node
		}
		// stale: superseded by a later, cheaper Push for the same cell
	}
	return nil
}

// closedSet tracks cells that have been finalized (popped and expanded)
// so the search never re-expands the same grid cell twice.
type closedSet struct {
	seen map[gridKey]struct{}
}

func newClosedSet() *closedSet {
	return &closedSet{seen: make(map[gridKey]struct{})}
}

func (c *closedSet) Contains(idx GridIndex) bool {
	_, ok := c.seen[idx.key()]
	return ok
}

func (c *closedSet) Add(idx GridIndex) {
	c.seen[idx.key()] = struct{}{}
}
