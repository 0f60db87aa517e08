// builder.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// The bottom-up, id-stable minimizer (spec §4.3). GoSkrafl ships a
// pre-minimized binary and never minimizes at runtime, so there is no
// teacher code to adapt here directly (spec §9, Open Question 1 flags
// this exact gap) — but the shape below follows the teacher's general
// approach to bookkeeping-heavy, single-pass graph walks (explicit
// maps and a recursive method rather than closures over mutable state,
// deterministic iteration order everywhere).

/*

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program.  If not, see <http://www.gnu.org/licenses/>.

*/

package dawg

// minimizeStats reports the outcome of a minimize pass.
type minimizeStats struct {
	nodeCount  int
	edgeCount  int
	mergeCount int
}

// minimizer collapses right-language-equivalent states in a graph
// rooted at root, whose nodes are held in arena (indexed by nodeID).
// It records the canonical survivors and, in remap, an id-remap from
// every visited original id to its canonical survivor's original id;
// minimize builds the new arena from the survivors and does not return
// the remap.
type minimizer struct {
	arena    []*node
	epoch    uint64
	registry map[string]*node
	remap    map[nodeID]nodeID
	done     map[nodeID]*node // memoizes visit() so shared children are processed once
	survivor []*node          // canonical nodes in post-order discovery order
}

func newMinimizer(arena []*node, epoch uint64) *minimizer {
	return &minimizer{
		arena:    arena,
		epoch:    epoch,
		registry: make(map[string]*node, len(arena)),
		remap:    make(map[nodeID]nodeID, len(arena)),
		done:     make(map[nodeID]*node, len(arena)),
	}
}

// minimize runs the full algorithm from root and returns the new dense
// arena (reindexed from 0), the new root id within that arena, and
// stats. The input arena is mutated in place (edges are rewritten to
// canonical child ids as a side effect of visit); callers that need to
// keep the pre-minimization graph must pass a copy.
func minimize(arena []*node, root nodeID) ([]*node, nodeID, minimizeStats, error) {
	m := newMinimizer(arena, 0)
	canonicalRoot := m.visit(root)
	if canonicalRoot == nil {
		return nil, 0, minimizeStats{}, newErr(KindMinimizeConsistency, "minimizer produced no root", nil)
	}

	// Reassign dense ids to the surviving set in first-registered
	// order, which is deterministic because visitation order is
	// deterministic given the edge-ordering invariant (spec §4.3,
	// "Tie-breaking").
	newArena := make([]*node, len(m.survivor))
	reindex := make(map[nodeID]nodeID, len(m.survivor))
	for i, n := range m.survivor {
		reindex[n.id] = nodeID(i)
	}
	edgeCount := 0
	for i, n := range m.survivor {
		nn := &node{
			id:         nodeID(i),
			terminal:   n.terminal,
			valueIndex: n.valueIndex,
			edges:      make([]edge, len(n.edges)),
		}
		for j, e := range n.edges {
			nn.edges[j] = edge{unit: e.unit, child: reindex[e.child]}
		}
		edgeCount += len(nn.edges)
		newArena[i] = nn
	}
	newRoot := reindex[canonicalRoot.id]
	stats := minimizeStats{
		nodeCount:  len(newArena),
		edgeCount:  edgeCount,
		mergeCount: len(arena) - len(newArena),
	}
	return newArena, newRoot, stats, nil
}

// visit performs step 2 of spec §4.3 (bottom-up minimization) on the
// node identified by id, returning its canonical survivor. Results are
// memoized by original id so a node with multiple incoming edges is
// only processed once.
func (m *minimizer) visit(id nodeID) *node {
	if done, ok := m.done[id]; ok {
		return done
	}
	n := m.arena[id]
	if n.visiting {
		// Cycle defense (spec §4.3 step 3): the graph is invariantly a
		// DAG, so this should be unreachable, but a malformed builder
		// must not hang. Treat the in-progress node as its own
		// (unminimized) survivor rather than recursing forever.
		return n
	}
	n.visiting = true
	for i, e := range n.edges {
		childCanon := m.visit(e.child)
		n.edges[i].child = childCanon.id
	}
	n.visiting = false

	sig := n.signature(m.arena)
	if existing, ok := m.registry[sig]; ok && existing.structurallyEqual(n) {
		m.remap[n.id] = existing.id
		m.done[id] = existing
		return existing
	}
	n.sig = sig
	m.registry[sig] = n
	m.remap[n.id] = n.id
	m.survivor = append(m.survivor, n)
	m.done[id] = n
	return n
}
