// wildcard.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Wildcard matching: pattern alphabet is a literal unit, `?` (exactly
// one unit), and `*` (zero or more units). Modeled on GoSkrafl's
// MatchNavigator (navigators.go), which drives an identical
// recursive-descent walk for its own single-wildcard `?` dialect; this
// generalizes that matcher to add `*` and a visited-memo so `**`-style
// patterns stay polynomial.

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

import "sort"

// Wildcard returns every accepted key matching pattern, in
// lexicographic order with duplicates suppressed.
func (a *Automaton) Wildcard(pattern string) []string {
	if a.qcache == nil {
		a.qcache = newQueryCache()
	}
	if cached, ok := a.qcache.getWildcard(pattern); ok {
		return cached
	}
	result := wildcardSearch(automatonView{a}, pattern)
	a.qcache.putWildcard(pattern, result)
	return result
}

// Wildcard runs the same matcher over a memory-mapped container.
func (r *Reader) Wildcard(pattern string) []string {
	if cached, ok := r.qcache.getWildcard(pattern); ok {
		return cached
	}
	result := wildcardSearch(readerView{r}, pattern)
	r.qcache.putWildcard(pattern, result)
	return result
}

// wildcardMemoKey identifies one (cursor, pattern-position) pair for
// the visited-memo that keeps `*`-heavy patterns from blowing up.
//
// The memo caches the set of matching *suffixes* relative to cursor,
// not full keys: after minimization a node may be reached by more than
// one prefix (that is the entire point of sharing), so a plain
// visited-boolean would silently drop every later prefix that reaches
// an already-visited (cursor, pos) pair. Caching the prefix-independent
// continuation and letting each caller prepend its own unit keeps the
// memo sound under sharing while still bounding the work to one
// evaluation per (cursor, pos).
type wildcardMemoKey struct {
	cursor uint32
	pos    int
}

func wildcardSearch(g graphView, pattern string) []string {
	pat := []rune(pattern)
	memo := make(map[wildcardMemoKey][][]rune)

	var solve func(cursor uint32, pos int) [][]rune
	solve = func(cursor uint32, pos int) [][]rune {
		key := wildcardMemoKey{cursor: cursor, pos: pos}
		if v, ok := memo[key]; ok {
			return v
		}

		var result [][]rune
		switch {
		case pos == len(pat):
			if g.isTerminal(cursor) {
				result = append(result, []rune{})
			}
		case pat[pos] == '?':
			n := g.edgeCount(cursor)
			for i := 0; i < n; i++ {
				u := g.edgeUnit(cursor, i)
				for _, suf := range solve(g.edgeChild(cursor, i), pos+1) {
					result = append(result, prependRune(u, suf))
				}
			}
		case pat[pos] == '*':
			// Stay: match zero more units, advance past the `*`.
			result = append(result, solve(cursor, pos+1)...)
			// Descend an edge and remain on the `*` (match one more).
			n := g.edgeCount(cursor)
			for i := 0; i < n; i++ {
				u := g.edgeUnit(cursor, i)
				for _, suf := range solve(g.edgeChild(cursor, i), pos) {
					result = append(result, prependRune(u, suf))
				}
			}
		default:
			if child, ok := g.findEdge(cursor, pat[pos]); ok {
				for _, suf := range solve(child, pos+1) {
					result = append(result, prependRune(pat[pos], suf))
				}
			}
		}

		memo[key] = result
		return result
	}

	seen := make(map[string]struct{})
	var out []string
	for _, full := range solve(g.root(), 0) {
		k := string(full)
		if _, dup := seen[k]; !dup {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func prependRune(u rune, rest []rune) []rune {
	out := make([]rune, 0, len(rest)+1)
	out = append(out, u)
	out = append(out, rest...)
	return out
}
