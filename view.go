// view.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Search extensions only read through node/edge accessors, so the
// same traversal code must run identically over a live Automaton and
// a memory-mapped Reader. This file is the seam: graphView abstracts
// "a node cursor with sorted, decodable edges" so wildcard.go and
// fuzzy.go are written once against it, the way GoSkrafl's Navigator
// interface (navigators.go) lets one traversal loop drive several
// distinct matchers -- here generalized the other way, with one
// matcher driving either of two distinct underlying graphs.

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

// graphView is the minimal read surface a search extension needs. A
// cursor is an opaque uint32 whose meaning (arena node id, or mapped
// byte offset) is private to the implementation.
type graphView interface {
	root() uint32
	isTerminal(c uint32) bool
	valueAt(c uint32) Value
	edgeCount(c uint32) int
	edgeUnit(c uint32, i int) rune
	edgeChild(c uint32, i int) uint32
	findEdge(c uint32, r rune) (uint32, bool)
}

// automatonView adapts a live Automaton to graphView.
type automatonView struct{ a *Automaton }

func (v automatonView) root() uint32        { return uint32(v.a.root) }
func (v automatonView) isTerminal(c uint32) bool { return v.a.arena[c].terminal }

func (v automatonView) valueAt(c uint32) Value {
	n := v.a.arena[c]
	if n.valueIndex == noValueIndex {
		return NoValue
	}
	return v.a.values[n.valueIndex]
}

func (v automatonView) edgeCount(c uint32) int { return len(v.a.arena[c].edges) }

func (v automatonView) edgeUnit(c uint32, i int) rune {
	return v.a.alphabet.decode(v.a.arena[c].edges[i].unit)
}

func (v automatonView) edgeChild(c uint32, i int) uint32 {
	return uint32(v.a.arena[c].edges[i].child)
}

func (v automatonView) findEdge(c uint32, r rune) (uint32, bool) {
	u, ok := v.a.alphabet.encode(r)
	if !ok {
		return 0, false
	}
	child, ok := v.a.arena[c].getEdge(u)
	return uint32(child), ok
}

// readerView adapts a memory-mapped Reader to graphView.
type readerView struct{ r *Reader }

func (v readerView) root() uint32 { return uint32(v.r.rootCursor()) }

func (v readerView) isTerminal(c uint32) bool {
	return v.r.isTerminal(nodeCursor(c))
}

func (v readerView) valueAt(c uint32) Value {
	rec := v.r.nodeRecordAt(nodeCursor(c))
	return v.r.valueAt(rec)
}

func (v readerView) edgeCount(c uint32) int {
	return v.r.edgeCount(nodeCursor(c))
}

func (v readerView) edgeUnit(c uint32, i int) rune {
	return v.r.alphabet.decode(v.r.edgeUnitAt(nodeCursor(c), i))
}

func (v readerView) edgeChild(c uint32, i int) uint32 {
	return uint32(v.r.edgeChildAt(nodeCursor(c), i))
}

func (v readerView) findEdge(c uint32, r rune) (uint32, bool) {
	u, ok := v.r.alphabet.encode(r)
	if !ok {
		return 0, false
	}
	child, ok := v.r.getEdge(nodeCursor(c), u)
	return uint32(child), ok
}
