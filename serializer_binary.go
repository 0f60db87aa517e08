// serializer_binary.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Serializes an Automaton to the fixed-width binary container (spec
// §4.5, "Write procedure"). The write-to-temp-then-rename pattern
// mirrors how durable on-disk artifacts are published elsewhere in the
// pack (e.g. a checkpoint file that must never be observed half
// written); google/uuid gives the temp file a collision-proof suffix
// instead of a PID-based one.

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
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SaveBinary writes the automaton to path in the binary container
// format. The write is atomic: it writes to a temporary file in the
// same directory and renames it into place, so a reader can never
// observe a partially written file (spec §5: "Open files MUST NOT be
// truncated while a reader maps them").
func (a *Automaton) SaveBinary(path string) error {
	data, err := a.marshalBinary()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return newErr(KindIOFailure, "writing temp file", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return newErr(KindIOFailure, "renaming temp file into place", err)
	}
	return nil
}

// marshalBinary lays out the container per spec §4.5: a BFS from root
// assigns each reachable node a dense index, node records are written
// in that order, then each node's edges (already unit-sorted) are
// concatenated, then the value table, then the character map if the
// alphabet is Compressed-7.
func (a *Automaton) marshalBinary() ([]byte, error) {
	order, indexOf := a.bfsOrder()
	narrow := a.alphabet.mode != modeWide

	// Lay out edges first so we know each node's edgesOffset before
	// writing node records.
	type laidEdge struct {
		unit   rune
		target uint32
	}
	nodeEdges := make([][]laidEdge, len(order))
	totalEdges := 0
	for i, id := range order {
		n := a.arena[id]
		es := make([]laidEdge, len(n.edges))
		for j, e := range n.edges {
			es[j] = laidEdge{unit: e.unit, target: uint32(indexOf[e.child])}
		}
		nodeEdges[i] = es
		totalEdges += len(es)
	}

	edgeTableOff := uint32(headerSize + len(order)*nodeRecordSize)
	nodeBytes := make([]byte, 0, len(order)*nodeRecordSize)
	edgeBytes := make([]byte, 0, totalEdges*edgeRecordSize)

	offset := edgeTableOff
	for i, id := range order {
		n := a.arena[id]
		rec := nodeRecord{
			edgeCount:   uint32(len(nodeEdges[i])),
			edgesOffset: offset,
			valueIndex:  noValueIndex,
		}
		if n.terminal {
			rec.flags |= nodeFlagTerminal
		}
		if n.terminal && n.valueIndex != noValueIndex {
			rec.flags |= nodeFlagHasValue
			rec.valueIndex = n.valueIndex
			if _, ok := a.values[n.valueIndex].Int(); ok {
				rec.flags |= nodeFlagIntValue
			}
		}
		nodeBytes = append(nodeBytes, rec.marshal()...)
		for _, e := range nodeEdges[i] {
			if narrow {
				edgeBytes = append(edgeBytes, marshalNarrowEdge(byte(e.unit), e.target)...)
			} else {
				edgeBytes = append(edgeBytes, marshalWideEdge(e.unit, e.target)...)
			}
		}
		offset += uint32(len(nodeEdges[i])) * edgeRecordSize
	}

	valueTableOff := offset
	valueBytes, err := marshalValueTable(a.values, a.valueKeys, a.alphabet.mode == modeASCII)
	if err != nil {
		return nil, err
	}

	var charMapBytes []byte
	if a.alphabet.mode == modeCompressed7 {
		charMapBytes = marshalCharMap(a.alphabet)
	}

	h := header{
		magic:         [4]byte{magicD, magicA, magicW, magicG},
		version:       formatVersion,
		nodeCount:     uint32(len(order)),
		edgeCount:     uint32(totalEdges),
		rootOffset:    headerSize,
		valueTableOff: valueTableOff,
		valueTableCnt: uint32(len(a.values)),
	}
	switch a.alphabet.mode {
	case modeASCII:
		h.flags |= flagASCII
	case modeCompressed7:
		h.flags |= flagCompressed
	}

	out := make([]byte, 0, headerSize+len(nodeBytes)+len(edgeBytes)+len(valueBytes)+len(charMapBytes))
	out = append(out, h.marshal()...)
	out = append(out, nodeBytes...)
	out = append(out, edgeBytes...)
	out = append(out, valueBytes...)
	out = append(out, charMapBytes...)
	return out, nil
}

// bfsOrder assigns every reachable node a dense index via BFS from the
// root (spec §4.5, "Write procedure"), returning the visitation order
// and a lookup from original id to dense index.
func (a *Automaton) bfsOrder() ([]nodeID, map[nodeID]int) {
	order := make([]nodeID, 0, len(a.arena))
	indexOf := make(map[nodeID]int, len(a.arena))
	queue := []nodeID{a.root}
	indexOf[a.root] = 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, e := range a.arena[id].edges {
			if _, seen := indexOf[e.child]; !seen {
				indexOf[e.child] = 0 // placeholder, fixed below once order is final
				queue = append(queue, e.child)
			}
		}
	}
	for i, id := range order {
		indexOf[id] = i
	}
	return order, indexOf
}

// marshalValueTable encodes the value table (spec §4.5): entry_count
// followed by length-prefixed (key_bytes, value_bytes) pairs. "In
// ascii-only mode, bytes are interpreted as the narrow unit; otherwise
// each character in a key or value occupies four bytes in code-point
// form" (spec §4.5) -- asciiOnly selects between those two character
// encodings for key_bytes and any byte-string value_bytes.
//
// The container format has no per-entry type tag distinguishing an
// integer value from a byte-string value; that distinction is carried
// on the owning node's record instead (nodeFlagIntValue), and integer
// values are written here as a fixed 8-byte little-endian payload,
// both choices filling a gap spec.md leaves open (see DESIGN.md).
func marshalValueTable(values []Value, keys [][]rune, asciiOnly bool) ([]byte, error) {
	out := make([]byte, 4)
	putU32(out[0:4], uint32(len(values)))
	for i, v := range values {
		out = appendLenPrefixed(out, encodeChars(keys[i], asciiOnly))
		if n, ok := v.Int(); ok {
			var b [8]byte
			putU32(b[0:4], uint32(n))
			putU32(b[4:8], uint32(n>>32))
			out = appendLenPrefixed(out, b[:])
			continue
		}
		var runes []rune
		if s, ok := v.String(); ok {
			runes = []rune(s)
		} else {
			runes = []rune(string(v.binaryBytes()))
		}
		out = appendLenPrefixed(out, encodeChars(runes, asciiOnly))
	}
	return out, nil
}

// encodeChars renders a rune sequence the way the value table stores
// "characters": one byte per rune in ascii-only mode, four
// little-endian bytes per rune (the raw code point, not the
// compressed-mode unit) otherwise.
func encodeChars(runes []rune, asciiOnly bool) []byte {
	if asciiOnly {
		b := make([]byte, len(runes))
		for i, r := range runes {
			b[i] = byte(r)
		}
		return b
	}
	b := make([]byte, 4*len(runes))
	for i, r := range runes {
		putU32(b[4*i:4*i+4], uint32(r))
	}
	return b
}

func appendLenPrefixed(out []byte, b []byte) []byte {
	var lenBuf [4]byte
	putU32(lenBuf[:], uint32(len(b)))
	out = append(out, lenBuf[:]...)
	out = append(out, b...)
	return out
}

func putU32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// charMapRec is one pending character-map entry prior to encoding.
type charMapRec struct {
	cp  rune
	byt byte
}

// marshalCharMap encodes the character map (spec §4.5): count followed
// by (code_point, mapped_byte, reserved) records describing exactly
// the forward table's non-identity entries.
func marshalCharMap(ab *alphabet) []byte {
	var recs []charMapRec
	for cp, unit := range ab.forward {
		if cp == unit {
			continue // identity pass-through, not a "mapping" worth recording
		}
		recs = append(recs, charMapRec{cp: cp, byt: byte(unit)})
	}
	// Deterministic order keeps repeated SaveBinary calls byte-identical.
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && recs[j-1].cp > recs[j].cp; j-- {
			recs[j-1], recs[j] = recs[j], recs[j-1]
		}
	}

	out := make([]byte, 4)
	putU32(out[0:4], uint32(len(recs)))
	for _, r := range recs {
		var b [charMapEntrySize]byte
		putU32(b[0:4], uint32(r.cp))
		b[4] = r.byt
		out = append(out, b[:]...)
	}
	return out
}
