// fuzzy.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Bounded edit-distance matching: a row-at-a-time Levenshtein DP
// carried through a trie/DAWG walk, pruning a subtree as soon as every
// entry in its current row exceeds the distance budget. Modeled on
// GoSkrafl's LeftFindNavigator/PermutationNavigator family
// (navigators.go) for the "extend key by one unit per recursion level,
// backtrack on dead end" shape; the DP row itself has no GoSkrafl
// analogue and follows the classic Levenshtein-over-a-trie
// construction.

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

// FuzzyMatch is one result of a bounded edit-distance search: key and
// its Levenshtein distance from the query.
type FuzzyMatch struct {
	Key      string
	Distance int
}

// Fuzzy returns every accepted key within maxDist of target, sorted by
// distance ascending then lexicographically.
func (a *Automaton) Fuzzy(target string, maxDist int) []FuzzyMatch {
	if a.qcache == nil {
		a.qcache = newQueryCache()
	}
	key := fuzzyCacheKey{target: target, kind: 'f', arg: maxDist}
	if cached, ok := a.qcache.getFuzzy(key); ok {
		return cached
	}
	result := fuzzySearch(automatonView{a}, target, maxDist)
	a.qcache.putFuzzy(key, result)
	return result
}

// Fuzzy runs the same matcher over a memory-mapped container.
func (r *Reader) Fuzzy(target string, maxDist int) []FuzzyMatch {
	key := fuzzyCacheKey{target: target, kind: 'f', arg: maxDist}
	if cached, ok := r.qcache.getFuzzy(key); ok {
		return cached
	}
	result := fuzzySearch(readerView{r}, target, maxDist)
	r.qcache.putFuzzy(key, result)
	return result
}

func fuzzySearch(g graphView, target string, maxDist int) []FuzzyMatch {
	tgt := []rune(target)
	n := len(tgt)
	if maxDist < 0 {
		return nil
	}

	firstRow := make([]int, n+1)
	for j := 0; j <= n; j++ {
		firstRow[j] = j
	}

	var out []FuzzyMatch
	var buf []rune

	var rec func(cursor uint32, row []int)
	rec = func(cursor uint32, row []int) {
		if g.isTerminal(cursor) && row[n] <= maxDist {
			out = append(out, FuzzyMatch{Key: string(buf), Distance: row[n]})
		}
		edges := g.edgeCount(cursor)
		for i := 0; i < edges; i++ {
			u := g.edgeUnit(cursor, i)
			next := make([]int, n+1)
			next[0] = row[0] + 1
			for j := 1; j <= n; j++ {
				cost := 1
				if tgt[j-1] == u {
					cost = 0
				}
				del := row[j] + 1
				ins := next[j-1] + 1
				sub := row[j-1] + cost
				next[j] = minInt(minInt(del, ins), sub)
			}
			if minRow(next) > maxDist {
				continue
			}
			buf = append(buf, u)
			rec(g.edgeChild(cursor, i), next)
			buf = buf[:len(buf)-1]
		}
	}
	rec(g.root(), firstRow)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Closest returns up to limit keys nearest to target, progressively
// widening the distance threshold from 0 until limit results are
// collected or the threshold exceeds the target's length.
func (a *Automaton) Closest(target string, limit int) []FuzzyMatch {
	if a.qcache == nil {
		a.qcache = newQueryCache()
	}
	key := fuzzyCacheKey{target: target, kind: 'c', arg: limit}
	if cached, ok := a.qcache.getFuzzy(key); ok {
		return cached
	}
	result := closestSearch(automatonView{a}, target, limit)
	a.qcache.putFuzzy(key, result)
	return result
}

// Closest runs the same progressive-widening search over a
// memory-mapped container.
func (r *Reader) Closest(target string, limit int) []FuzzyMatch {
	key := fuzzyCacheKey{target: target, kind: 'c', arg: limit}
	if cached, ok := r.qcache.getFuzzy(key); ok {
		return cached
	}
	result := closestSearch(readerView{r}, target, limit)
	r.qcache.putFuzzy(key, result)
	return result
}

func closestSearch(g graphView, target string, limit int) []FuzzyMatch {
	maxThreshold := len([]rune(target))
	for threshold := 0; threshold <= maxThreshold; threshold++ {
		results := fuzzySearch(g, target, threshold)
		if len(results) >= limit || threshold == maxThreshold {
			if len(results) > limit {
				results = results[:limit]
			}
			return results
		}
	}
	return nil
}

// SpellCheck is a convenience wrapper over Fuzzy for spelling
// suggestions: it short-circuits to an empty list when word is already
// accepted, and otherwise limits candidates to distance <=
// ceil(len(word)/3).
func (a *Automaton) SpellCheck(word string) []FuzzyMatch {
	if a.Contains(word) {
		return nil
	}
	if a.qcache == nil {
		a.qcache = newQueryCache()
	}
	key := fuzzyCacheKey{target: word, kind: 's'}
	if cached, ok := a.qcache.getFuzzy(key); ok {
		return cached
	}
	result := fuzzySearch(automatonView{a}, word, spellCheckBudget(word))
	a.qcache.putFuzzy(key, result)
	return result
}

// SpellCheck runs the same convenience search over a memory-mapped
// container.
func (r *Reader) SpellCheck(word string) []FuzzyMatch {
	if r.Contains(word) {
		return nil
	}
	key := fuzzyCacheKey{target: word, kind: 's'}
	if cached, ok := r.qcache.getFuzzy(key); ok {
		return cached
	}
	result := fuzzySearch(readerView{r}, word, spellCheckBudget(word))
	r.qcache.putFuzzy(key, result)
	return result
}

func spellCheckBudget(word string) int {
	n := len([]rune(word))
	return (n + 2) / 3 // ceil(n/3)
}
