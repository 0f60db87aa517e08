// node.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// The in-memory automaton state. Nodes live in a dense arena and
// reference each other by id rather than by pointer, matching
// GoSkrafl's "arena + indices" shape (its navState carries a uint32
// nextNode rather than a *node pointer) and making serialization a
// straight walk instead of a pointer-chasing traversal.

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

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// noValueIndex marks a terminal node with no attached value.
const noValueIndex = ^uint32(0)

// edge is one outgoing transition, labeled by a single input unit.
type edge struct {
	unit  rune
	child nodeID
}

// nodeID identifies a node within an automaton's arena. It is unique
// among reachable nodes and stable across minimize.
type nodeID uint32

// node is a single automaton state.
type node struct {
	id         nodeID
	terminal   bool
	valueIndex uint32 // noValueIndex when absent
	edges      []edge // kept sorted ascending by unit at all times

	// Minimizer scratch fields. sig is written by the minimizer for each
	// canonical survivor on the scratch copy it works on; sigEpoch is
	// carried but not read by any code.
	sig      string
	sigEpoch uint64
	visiting bool // cycle defense during bottom-up minimization
}

// newNode allocates an empty, non-terminal node with the given id.
func newNode(id nodeID) *node {
	return &node{id: id, valueIndex: noValueIndex}
}

// getEdge returns the child reached by unit, or (0, false) on a miss.
// edges is kept sorted, so this is a binary search.
func (n *node) getEdge(unit rune) (nodeID, bool) {
	i, found := slices.BinarySearchFunc(n.edges, unit, func(e edge, u rune) int {
		return int(e.unit) - int(u)
	})
	if !found {
		return 0, false
	}
	return n.edges[i].child, true
}

// putEdge inserts or overwrites the outgoing edge labeled unit,
// preserving the strictly ascending unit order that edge iteration
// depends on.
func (n *node) putEdge(unit rune, child nodeID) {
	i, found := slices.BinarySearchFunc(n.edges, unit, func(e edge, u rune) int {
		return int(e.unit) - int(u)
	})
	if found {
		n.edges[i].child = child
		return
	}
	n.edges = append(n.edges, edge{})
	copy(n.edges[i+1:], n.edges[i:])
	n.edges[i] = edge{unit: unit, child: child}
}

// sortedEdges returns the edges slice, which is always kept sorted.
func (n *node) sortedEdges() []edge { return n.edges }

// signature computes n's right-language fingerprint from (terminal,
// valueIndex, sorted (unit, child.signature) pairs). It assumes every
// child's sig field is already set; the builder is responsible for
// bottom-up evaluation order.
func (n *node) signature(arena []*node) string {
	var sb strings.Builder
	if n.terminal {
		sb.WriteByte('T')
	} else {
		sb.WriteByte('t')
	}
	sb.WriteByte('|')
	if n.valueIndex == noValueIndex {
		sb.WriteString("-")
	} else {
		sb.WriteString(strconv.FormatUint(uint64(n.valueIndex), 10))
	}
	// n.edges is already sorted by unit, which is what signature
	// equality requires; re-sorting here would be redundant but is
	// kept as a defensive no-op cost since callers may hand us a node
	// built via means other than putEdge.
	edges := n.edges
	if !sort.SliceIsSorted(edges, func(i, j int) bool { return edges[i].unit < edges[j].unit }) {
		edges = append([]edge(nil), edges...)
		sort.Slice(edges, func(i, j int) bool { return edges[i].unit < edges[j].unit })
	}
	for _, e := range edges {
		sb.WriteByte('|')
		sb.WriteRune(e.unit)
		sb.WriteByte(':')
		sb.WriteString(arena[e.child].sig)
	}
	return sb.String()
}

// structurallyEqual defends against signature collisions: two nodes
// are structurally equal iff they agree on terminal, valueIndex, and
// every (unit, child id) pair, where child ids have already been
// canonicalized by the minimizer.
func (n *node) structurallyEqual(o *node) bool {
	if n.terminal != o.terminal || n.valueIndex != o.valueIndex {
		return false
	}
	if len(n.edges) != len(o.edges) {
		return false
	}
	for i := range n.edges {
		if n.edges[i].unit != o.edges[i].unit || n.edges[i].child != o.edges[i].child {
			return false
		}
	}
	return true
}
