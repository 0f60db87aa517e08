// cache.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// A size-bounded, thread-safe memo for repeated search-extension
// queries, modeled directly on GoSkrafl's crossCache (dawg.go): a
// mutex-guarded wrapper around hashicorp/golang-lru/simplelru.LRU,
// sized for "enough recent queries to matter, small enough to stay
// cheap." GoSkrafl caches cross-set bitmaps keyed by node; here the
// same structure caches whole Wildcard/Fuzzy result sets keyed by the
// query itself, since the expensive part of both searches is the
// graph walk, not the bookkeeping around it.

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
	"sync"

	lru "github.com/hashicorp/golang-lru/simplelru"
)

const defaultQueryCacheSize = 1024

// queryCache memoizes Search Extension results for a fixed graph
// snapshot. It is invalidated wholesale on any mutation of the owning
// Automaton (see invalidateStats) and is never invalidated for a
// Reader, whose underlying container never changes after Open.
type queryCache struct {
	mu  sync.Mutex
	lru *lru.LRU
}

func newQueryCache() *queryCache {
	l, _ := lru.NewLRU(defaultQueryCacheSize, nil)
	return &queryCache{lru: l}
}

type wildcardCacheKey struct {
	pattern string
}

type fuzzyCacheKey struct {
	target string
	kind   byte // 'f' = Fuzzy, 'c' = Closest, 's' = SpellCheck
	arg    int  // maxDist, limit, or unused
}

func (c *queryCache) getWildcard(pattern string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(wildcardCacheKey{pattern})
	if !ok {
		return nil, false
	}
	return v.([]string), true
}

func (c *queryCache) putWildcard(pattern string, result []string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(wildcardCacheKey{pattern}, result)
}

func (c *queryCache) getFuzzy(key fuzzyCacheKey) ([]FuzzyMatch, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]FuzzyMatch), true
}

func (c *queryCache) putFuzzy(key fuzzyCacheKey, result []FuzzyMatch) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(key, result)
}
