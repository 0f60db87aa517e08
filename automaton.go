// automaton.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// The Automaton Core (spec §4.4): the public, mutable surface of the
// package. It owns the node arena, the current Alphabet, and the
// value table, and orchestrates encoding transitions the way GoSkrafl
// orchestrates dictionary loading in dawg.Init — one synchronous setup
// step, never observed mid-transition by a reader (spec §5).

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

// Automaton is a mutable Directed Acyclic Word Graph. The zero value
// is not usable; construct one with [New].
type Automaton struct {
	arena     []*node
	root      nodeID
	alphabet  *alphabet
	values    []Value
	valueKeys [][]rune // valueKeys[i] is the key that produced values[i]; parallel, append-only
	deadCount int
	minimized bool
	stats     *subtreeStats // lazily computed, invalidated on mutation
	qcache    *queryCache   // lazily created, invalidated on mutation
}

// New returns an empty automaton in ASCII mode with a single,
// non-terminal root.
func New() *Automaton {
	root := newNode(0)
	return &Automaton{
		arena:    []*node{root},
		root:     0,
		alphabet: newASCIIAlphabet(),
	}
}

// RootID returns the stable id of the current root node.
func (a *Automaton) RootID() uint32 { return uint32(a.root) }

// GetNodeByID returns a read-only view of the node with the given id,
// or ok=false if it is out of range.
func (a *Automaton) GetNodeByID(id uint32) (NodeView, bool) {
	if int(id) >= len(a.arena) {
		return NodeView{}, false
	}
	return NodeView{a: a, id: nodeID(id)}, true
}

// keyValue is one (key, value) pair as recovered by a graph walk; key
// holds decoded (original) code points, not internal encoded units.
type keyValue struct {
	key   []rune
	value Value
}

// collect walks the whole graph and returns every accepted key with
// its value, decoded back to original code points. Used by unshare,
// encoding upgrades, Rebuild, and the text serializer.
func (a *Automaton) collect() []keyValue {
	var out []keyValue
	var walk func(id nodeID, prefix []rune)
	walk = func(id nodeID, prefix []rune) {
		n := a.arena[id]
		if n.terminal {
			key := append([]rune(nil), prefix...)
			v := NoValue
			if n.valueIndex != noValueIndex {
				v = a.values[n.valueIndex]
			}
			out = append(out, keyValue{key: key, value: v})
		}
		for _, e := range n.edges {
			walk(e.child, append(prefix, a.alphabet.decode(e.unit)))
		}
	}
	walk(a.root, nil)
	return out
}

// keySet returns the accepted keys as a set of strings, used by the
// Minimize consistency check (spec §4.3, "Failure").
func (a *Automaton) keySet() map[string]struct{} {
	kvs := a.collect()
	out := make(map[string]struct{}, len(kvs))
	for _, kv := range kvs {
		out[string(kv.key)] = struct{}{}
	}
	return out
}

// fresh builds a brand-new, unminimized trie from entries using the
// given alphabet, replacing arena/root/values/deadCount. Re-adding a
// key overwrites its earlier value (spec §3, "Value table").
func (a *Automaton) fresh(ab *alphabet, entries []keyValue) {
	root := newNode(0)
	arena := []*node{root}
	values := make([]Value, 0, len(entries))
	valueKeys := make([][]rune, 0, len(entries))

	// last write wins per spec ("Re-adding an existing key overwrites
	// its prior value"); entries may contain duplicate keys after a
	// rebuild that merges an in-flight Add with the collected set.
	seen := make(map[string]int, len(entries)) // key -> index into a deduped slice
	deduped := make([]keyValue, 0, len(entries))
	for _, kv := range entries {
		k := string(kv.key)
		if idx, ok := seen[k]; ok {
			deduped[idx] = kv
			continue
		}
		seen[k] = len(deduped)
		deduped = append(deduped, kv)
	}

	for _, kv := range deduped {
		cur := nodeID(0)
		for _, r := range kv.key {
			unit, ok := ab.encode(r)
			if !ok {
				// Caller is responsible for having chosen an alphabet
				// that admits every rune in entries; this is defensive.
				panic("dawg: alphabet cannot encode rune during fresh build")
			}
			if child, ok := arena[cur].getEdge(unit); ok {
				cur = child
			} else {
				child := nodeID(len(arena))
				arena = append(arena, newNode(child))
				arena[cur].putEdge(unit, child)
				cur = child
			}
		}
		arena[cur].terminal = true
		if kv.value.HasValue() {
			values = append(values, kv.value)
			valueKeys = append(valueKeys, kv.key)
			arena[cur].valueIndex = uint32(len(values) - 1)
		} else {
			arena[cur].valueIndex = noValueIndex
		}
	}

	a.arena = arena
	a.root = root.id
	a.alphabet = ab
	a.values = values
	a.valueKeys = valueKeys
	a.deadCount = 0
	a.minimized = false
	a.invalidateStats()
}

// unshare rebuilds the current graph into an equivalent, unminimized
// trie so that a subsequent edit cannot alias unrelated keys through a
// shared suffix (spec §4.4, Add).
func (a *Automaton) unshare() {
	if !a.minimized {
		return
	}
	entries := a.collect()
	a.fresh(a.alphabet, entries)
}

// distinctRunes returns the set of distinct code points across the
// current key set, every current value that is itself a byte-string,
// and the extra runes supplied (typically the key/value being added).
func (a *Automaton) distinctRunes(extra ...[]rune) map[rune]struct{} {
	units := make(map[rune]struct{})
	for _, kv := range a.collect() {
		for _, r := range kv.key {
			units[r] = struct{}{}
		}
		if b, ok := kv.value.String(); ok {
			for _, r := range b {
				units[r] = struct{}{}
			}
		}
	}
	for _, rs := range extra {
		for _, r := range rs {
			units[r] = struct{}{}
		}
	}
	return units
}

// Add inserts key with an optional value, overwriting any existing
// value for the same key (spec §4.4). Empty keys are legal and mark
// the root terminal.
func (a *Automaton) Add(key string, value Value) error {
	a.unshare()

	keyRunes := []rune(key)
	var valueRunes []rune
	if b, ok := value.String(); ok {
		valueRunes = []rune(b)
	}

	if !a.alphabet.admitsAll(keyRunes) || !a.alphabet.admitsAll(valueRunes) {
		units := a.distinctRunes(keyRunes, valueRunes)
		newAlphabet, err := chooseMode(units)
		if err != nil {
			return err
		}
		entries := a.collect()
		entries = append(entries, keyValue{key: keyRunes, value: value})
		a.fresh(newAlphabet, entries)
		return nil
	}

	cur := a.root
	for _, r := range keyRunes {
		unit, _ := a.alphabet.encode(r)
		if child, ok := a.arena[cur].getEdge(unit); ok {
			cur = child
		} else {
			child := nodeID(len(a.arena))
			a.arena = append(a.arena, newNode(child))
			a.arena[cur].putEdge(unit, child)
			cur = child
		}
	}
	n := a.arena[cur]
	n.terminal = true
	if value.HasValue() {
		a.values = append(a.values, value)
		a.valueKeys = append(a.valueKeys, keyRunes)
		if n.valueIndex != noValueIndex {
			a.deadCount++
		}
		n.valueIndex = uint32(len(a.values) - 1)
	} else if n.valueIndex != noValueIndex {
		a.deadCount++
		n.valueIndex = noValueIndex
	}
	a.invalidateStats()
	return nil
}

// walk follows key from the root and returns the landing node id, or
// ok=false on a miss (including when a rune is unrepresentable in the
// current alphabet, per spec §4.4: "never an error... a miss").
func (a *Automaton) walk(key string) (nodeID, bool) {
	cur := a.root
	for _, r := range key {
		unit, ok := a.alphabet.encode(r)
		if !ok {
			return 0, false
		}
		child, ok := a.arena[cur].getEdge(unit)
		if !ok {
			return 0, false
		}
		cur = child
	}
	return cur, true
}

// Contains reports whether key was added and is still accepted.
func (a *Automaton) Contains(key string) bool {
	id, ok := a.walk(key)
	if !ok {
		return false
	}
	return a.arena[id].terminal
}

// Lookup returns the value stored for key, if any, and whether key is
// accepted at all.
func (a *Automaton) Lookup(key string) (Value, bool) {
	id, ok := a.walk(key)
	if !ok || !a.arena[id].terminal {
		return NoValue, false
	}
	n := a.arena[id]
	if n.valueIndex == noValueIndex {
		return NoValue, true
	}
	return a.values[n.valueIndex], true
}

// FindPrefixes returns every accepted key starting with prefix, in
// lexicographic order by unit code (spec §4.4, §8 property 2).
func (a *Automaton) FindPrefixes(prefix string) []string {
	landing, ok := a.walk(prefix)
	if !ok {
		return nil
	}
	var out []string
	var walkFn func(id nodeID, suffix []rune)
	walkFn = func(id nodeID, suffix []rune) {
		n := a.arena[id]
		if n.terminal {
			out = append(out, prefix+string(suffix))
		}
		for _, e := range n.edges {
			walkFn(e.child, append(suffix, a.alphabet.decode(e.unit)))
		}
	}
	walkFn(landing, nil)
	return out
}

// AllKeys returns every accepted key, equivalent to FindPrefixes("").
func (a *Automaton) AllKeys() []string { return a.FindPrefixes("") }

// Minimize collapses right-language-equivalent states. It is a no-op
// if the automaton is already minimized.
func (a *Automaton) Minimize() error {
	if a.minimized {
		return nil
	}
	before := a.keySet()

	// minimize() mutates its input arena in place, so hand it a scratch
	// copy rather than the live one, preserving rollback-on-failure
	// (spec §4.3, "Failure": "the automaton is left unchanged").
	scratch := make([]*node, len(a.arena))
	for i, n := range a.arena {
		cp := *n
		cp.edges = append([]edge(nil), n.edges...)
		scratch[i] = &cp
	}

	newArena, newRoot, _, err := minimize(scratch, a.root)
	if err != nil {
		return err
	}

	saved := a.arena
	savedRoot := a.root
	a.arena = newArena
	a.root = newRoot

	after := a.keySet()
	if !sameKeySet(before, after) {
		a.arena = saved
		a.root = savedRoot
		return newErr(KindMinimizeConsistency, "accepted-key set changed across minimize", nil)
	}

	a.minimized = true
	a.invalidateStats()
	return nil
}

func sameKeySet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}

// RebuildEncoding selects which alphabet mode Rebuild should target.
type RebuildEncoding int

const (
	// RebuildAuto picks the narrowest mode that fits the current data
	// (spec §4.2's decision function).
	RebuildAuto RebuildEncoding = iota
	RebuildASCII
	RebuildCompressed
	RebuildWide
)

// RebuildOptions configures [Automaton.Rebuild].
type RebuildOptions struct {
	Encoding          RebuildEncoding
	PreserveMinimized bool
}

// DefaultRebuildOptions returns RebuildAuto with PreserveMinimized set
// to true, matching spec §4.4's documented default for Rebuild.
func DefaultRebuildOptions() RebuildOptions {
	return RebuildOptions{Encoding: RebuildAuto, PreserveMinimized: true}
}

// Rebuild collects every (key, value) pair through the current
// alphabet's decode path, constructs a fresh automaton in the chosen
// mode, and swaps it in (spec §4.4).
func (a *Automaton) Rebuild(opts RebuildOptions) error {
	entries := a.collect()
	units := make(map[rune]struct{})
	for _, kv := range entries {
		for _, r := range kv.key {
			units[r] = struct{}{}
		}
		if b, ok := kv.value.String(); ok {
			for _, r := range b {
				units[r] = struct{}{}
			}
		}
	}

	var ab *alphabet
	switch opts.Encoding {
	case RebuildASCII:
		for u := range units {
			if u < 0 || u > 127 {
				return newErr(KindEncodingExceeded, "data contains non-ASCII code points", nil)
			}
		}
		ab = newASCIIAlphabet()
	case RebuildCompressed:
		if len(units) > maxCompressedUnits {
			return newErr(KindEncodingExceeded, "more than 89 distinct code points", nil)
		}
		built, ok := newCompressedAlphabet(units)
		if !ok {
			return newErr(KindEncodingExceeded, "no free remap slots for the current data", nil)
		}
		ab = built
	case RebuildWide:
		ab = newWideAlphabet()
	default: // RebuildAuto
		chosen, err := chooseMode(units)
		if err != nil {
			return err
		}
		ab = chosen
	}

	wasMinimized := a.minimized
	a.fresh(ab, entries)
	if opts.PreserveMinimized && wasMinimized {
		return a.Minimize()
	}
	return nil
}

// Stats reports summary statistics about the automaton (spec §4.4).
type Stats struct {
	NodeCount      int
	EdgeCount      int
	Minimized      bool
	ValueCount     int
	EstimatedBytes int
	IsASCIIOnly    bool
	IsCompressed   bool
	MappedUnits    int
}

// Stats returns summary statistics for the current automaton.
func (a *Automaton) Stats() Stats {
	edgeCount := 0
	for _, n := range a.arena {
		edgeCount += len(n.edges)
	}
	liveValues := 0
	for _, v := range a.values {
		if v.HasValue() {
			liveValues++
		}
	}
	return Stats{
		NodeCount:    len(a.arena),
		EdgeCount:    edgeCount,
		Minimized:    a.minimized,
		ValueCount:   liveValues,
		EstimatedBytes: headerSize +
			len(a.arena)*nodeRecordSize +
			edgeCount*edgeRecordSize,
		IsASCIIOnly:  a.alphabet.mode == modeASCII,
		IsCompressed: a.alphabet.mode == modeCompressed7,
		MappedUnits:  a.alphabet.unitCount(),
	}
}

// invalidateStats drops any cached subtree statistics (spec §9,
// "Subtree statistics... derived caches... invalidate on any
// mutation") along with any memoized Search Extension results, which
// are equally stale once the graph has changed.
func (a *Automaton) invalidateStats() {
	a.stats = nil
	a.qcache = nil
}

// NodeView is a read-only, stable handle onto one node of a live
// Automaton, exposing the contract of spec §4.1 (terminal, value
// index, edges) without leaking the internal arena representation.
type NodeView struct {
	a  *Automaton
	id nodeID
}

// ID returns the node's stable identifier.
func (v NodeView) ID() uint32 { return uint32(v.id) }

// Terminal reports whether the key leading here is accepted.
func (v NodeView) Terminal() bool { return v.a.arena[v.id].terminal }

// ValueIndex returns the node's value-table index and true, or
// (0, false) if the node is not terminal or has no value.
func (v NodeView) ValueIndex() (uint32, bool) {
	n := v.a.arena[v.id]
	if !n.terminal || n.valueIndex == noValueIndex {
		return 0, false
	}
	return n.valueIndex, true
}

// EdgeView describes one outgoing transition.
type EdgeView struct {
	Unit  rune
	Child NodeView
}

// Edges returns the node's outgoing edges in strictly ascending order
// of their internal (encoded) unit (spec §4.1). Unit holds the decoded
// code point, so in Compressed-7 mode the Unit values need not be
// ascending.
func (v NodeView) Edges() []EdgeView {
	n := v.a.arena[v.id]
	out := make([]EdgeView, len(n.edges))
	for i, e := range n.edges {
		out[i] = EdgeView{Unit: v.a.alphabet.decode(e.unit), Child: NodeView{a: v.a, id: e.child}}
	}
	return out
}

// GetEdge returns the child reached by unit, or ok=false on a miss.
func (v NodeView) GetEdge(unit rune) (NodeView, bool) {
	n := v.a.arena[v.id]
	encoded, ok := v.a.alphabet.encode(unit)
	if !ok {
		return NodeView{}, false
	}
	child, ok := n.getEdge(encoded)
	if !ok {
		return NodeView{}, false
	}
	return NodeView{a: v.a, id: child}, true
}

// subtreeStats is a derived, lazily computed cache (spec §9); word
// count per subtree, kept only to answer Stats()-adjacent debugging
// queries, never relied on for correctness.
type subtreeStats struct {
	wordCount map[nodeID]int
}

func (a *Automaton) subtreeWordCounts() map[nodeID]int {
	if a.stats != nil {
		return a.stats.wordCount
	}
	counts := make(map[nodeID]int, len(a.arena))
	var visit func(id nodeID) int
	visit = func(id nodeID) int {
		if c, ok := counts[id]; ok {
			return c
		}
		n := a.arena[id]
		c := 0
		if n.terminal {
			c = 1
		}
		for _, e := range n.edges {
			c += visit(e.child)
		}
		counts[id] = c
		return c
	}
	visit(a.root)
	a.stats = &subtreeStats{wordCount: counts}
	return counts
}
