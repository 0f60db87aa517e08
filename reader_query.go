// reader_query.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// The Reader's lookup surface, mirroring Automaton's walk/Contains/
// Lookup/FindPrefixes (automaton.go) but descending through mapped
// node records instead of the in-memory arena. Modeled on GoSkrafl's
// dawg.Find, generalized from its single-rune-per-byte iteration to
// the three-mode unit encoding of alphabet.go.

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

// walk descends from the root following key, returning the cursor it
// lands on and whether every rune was consumable by the alphabet and
// matched an edge.
func (r *Reader) walk(key string) (nodeCursor, bool) {
	c := r.rootCursor()
	for _, ch := range key {
		u, ok := r.alphabet.encode(ch)
		if !ok {
			return 0, false
		}
		child, ok := r.getEdge(c, u)
		if !ok {
			return 0, false
		}
		c = child
	}
	return c, true
}

// Contains reports whether key is a terminal key in the container.
func (r *Reader) Contains(key string) bool {
	c, ok := r.walk(key)
	if !ok {
		return false
	}
	return r.isTerminal(c)
}

// Lookup returns the value attached to key, if key is a terminal key.
func (r *Reader) Lookup(key string) (Value, bool) {
	c, ok := r.walk(key)
	if !ok || !r.isTerminal(c) {
		return NoValue, false
	}
	rec := r.nodeRecordAt(c)
	return r.valueAt(rec), true
}

// FindPrefixes returns every terminal key starting with prefix, in
// lexicographic order by unit code (spec §4.4, §8 property 2): walk to
// the prefix's landing node (miss -> empty), then DFS-enumerate its
// terminal descendants, appending decoded units to prefix.
func (r *Reader) FindPrefixes(prefix string) []string {
	landing, ok := r.walk(prefix)
	if !ok {
		return nil
	}
	var out []string
	var suffix []rune
	var visit func(c nodeCursor)
	visit = func(c nodeCursor) {
		if r.isTerminal(c) {
			out = append(out, prefix+string(suffix))
		}
		n := r.edgeCount(c)
		for i := 0; i < n; i++ {
			u := r.edgeUnitAt(c, i)
			child := r.edgeChildAt(c, i)
			suffix = append(suffix, r.alphabet.decode(u))
			visit(child)
			suffix = suffix[:len(suffix)-1]
		}
	}
	visit(landing)
	return out
}

// AllKeys returns every terminal key reachable from the root, in
// lexicographic order of encoded units.
func (r *Reader) AllKeys() []string {
	var out []string
	var buf []rune
	var visit func(c nodeCursor)
	visit = func(c nodeCursor) {
		if r.isTerminal(c) {
			out = append(out, string(buf))
		}
		n := r.edgeCount(c)
		for i := 0; i < n; i++ {
			u := r.edgeUnitAt(c, i)
			child := r.edgeChildAt(c, i)
			buf = append(buf, r.alphabet.decode(u))
			visit(child)
			buf = buf[:len(buf)-1]
		}
	}
	visit(r.rootCursor())
	return out
}

// Stats reports the structural size of the mapped container.
func (r *Reader) Stats() Stats {
	return Stats{
		NodeCount:      int(r.hdr.nodeCount),
		EdgeCount:      int(r.hdr.edgeCount),
		Minimized:      true,
		ValueCount:     int(r.hdr.valueTableCnt),
		EstimatedBytes: len(r.mem),
		IsASCIIOnly:    r.alphabet.mode == modeASCII,
		IsCompressed:   r.alphabet.mode == modeCompressed7,
		MappedUnits:    r.alphabet.unitCount(),
	}
}
