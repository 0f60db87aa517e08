// reader.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// The memory-mapped Reader: a read-only view of a container file that
// answers the same query surface as the in-memory Automaton without
// ever materializing a node. Modeled on SnellerInc-sneller's mmap
// helpers for the platform-specific mapping call, and on GoSkrafl's
// dawg.Init/iterNode for the "decode straight out of a byte buffer
// with manual offset arithmetic" technique, generalized here from
// GoSkrafl's variable-length compressed records to this package's
// fixed-width records.

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
)

// nodeCursor is a byte offset into the mapped region naming a 32-byte
// node record -- the ephemeral, mmap-backed analogue of an in-memory
// NodeView.
type nodeCursor uint32

// Reader is a read-only, memory-mapped view of a binary container.
// It is safe for concurrent use by any number of goroutines.
type Reader struct {
	f        *os.File
	mem      []byte
	hdr      *header
	alphabet *alphabet
	qcache   *queryCache
}

// Open memory-maps path, validates its header, and returns a Reader
// ready to answer queries. The character map (if present, at most 89
// entries) is decoded into small in-memory forward and reverse tables
// of at most 128 entries each; no node or edge is ever copied out of
// the mapped region.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newErr(KindIOFailure, "opening container", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, newErr(KindIOFailure, "stat", err)
	}
	size := info.Size()
	if size > int64(^uint32(0)) {
		f.Close()
		return nil, newErr(KindIOFailure, "file too large to map", nil)
	}
	mem, err := mmapFile(f, int(size))
	if err != nil {
		f.Close()
		return nil, err
	}

	r, err := newReaderFromBytes(mem)
	if err != nil {
		munmapFile(mem)
		f.Close()
		return nil, err
	}
	r.f = f
	return r, nil
}

// newReaderFromBytes builds a Reader over an already-mapped (or
// already-loaded) byte slice, validating the header and node/edge
// tables' read-time invariants.
func newReaderFromBytes(mem []byte) (*Reader, error) {
	hdr, err := unmarshalHeader(mem)
	if err != nil {
		return nil, err
	}
	if err := validateContainer(mem, hdr); err != nil {
		return nil, err
	}

	var ab *alphabet
	switch {
	case hdr.flags&flagASCII != 0:
		ab = newASCIIAlphabet()
	case hdr.flags&flagCompressed != 0:
		forward, reverse, err := decodeCharMap(mem, hdr)
		if err != nil {
			return nil, err
		}
		ab = &alphabet{mode: modeCompressed7, forward: forward, reverse: reverse}
	default:
		ab = newWideAlphabet()
	}

	return &Reader{mem: mem, hdr: hdr, alphabet: ab, qcache: newQueryCache()}, nil
}

// validateContainer checks the read-time invariants of the container
// format: edge_count consistency and in-range edge targets. Narrow-form
// unit bytes are always in 0..255 by construction of the byte type, so
// that check is implicit.
func validateContainer(mem []byte, hdr *header) error {
	need := int(hdr.rootOffset) + int(hdr.nodeCount)*nodeRecordSize
	if len(mem) < need {
		return newErr(KindBadContainer, "file truncated before end of node table", nil)
	}
	totalEdges := uint32(0)
	for i := uint32(0); i < hdr.nodeCount; i++ {
		off := int(hdr.rootOffset) + int(i)*nodeRecordSize
		rec := unmarshalNodeRecord(mem[off : off+nodeRecordSize])
		totalEdges += rec.edgeCount
		edgesEnd := int(rec.edgesOffset) + int(rec.edgeCount)*edgeRecordSize
		if edgesEnd > len(mem) {
			return newErr(KindBadContainer, "edge table extends past end of file", nil)
		}
	}
	if totalEdges != hdr.edgeCount {
		return newErr(KindBadContainer, "sum of per-node edge counts does not match header", nil)
	}
	narrow := hdr.isNarrow()
	for i := uint32(0); i < hdr.nodeCount; i++ {
		off := int(hdr.rootOffset) + int(i)*nodeRecordSize
		rec := unmarshalNodeRecord(mem[off : off+nodeRecordSize])
		for j := uint32(0); j < rec.edgeCount; j++ {
			eoff := int(rec.edgesOffset) + int(j)*edgeRecordSize
			eb := mem[eoff : eoff+edgeRecordSize]
			var target uint32
			if narrow {
				_, target = unmarshalNarrowEdge(eb)
			} else {
				_, target = unmarshalWideEdge(eb)
			}
			if target >= hdr.nodeCount {
				return newErr(KindBadContainer, "edge target out of range", nil)
			}
		}
	}
	if int(hdr.valueTableOff)+4 > len(mem) {
		return newErr(KindBadContainer, "value table offset out of range", nil)
	}
	return nil
}

// decodeCharMap reconstructs the forward/reverse tables from the
// character map region at load time.
func decodeCharMap(mem []byte, hdr *header) (forward, reverse map[rune]rune, err error) {
	off := charMapOffset(mem, hdr)
	if off+4 > len(mem) {
		return nil, nil, newErr(KindBadContainer, "character map truncated", nil)
	}
	count := getU32(mem[off : off+4])
	off += 4
	forward = make(map[rune]rune, count)
	reverse = make(map[rune]rune, count)
	// The character map only stores non-identity entries. Every ASCII
	// byte is seeded as an identity mapping, and each explicit entry
	// below replaces the identity mapping of its slot byte, so a remap
	// slot byte is never accepted as itself. An ASCII byte that is
	// neither a slot nor a unit of the data maps to itself but labels
	// no edge, so a query containing it misses, as in the automaton.
	for b := rune(0); b <= 127; b++ {
		forward[b] = b
		reverse[b] = b
	}
	for i := uint32(0); i < count; i++ {
		entryOff := off + int(i)*charMapEntrySize
		if entryOff+charMapEntrySize > len(mem) {
			return nil, nil, newErr(KindBadContainer, "character map entry out of range", nil)
		}
		cp := rune(getU32(mem[entryOff : entryOff+4]))
		b := rune(mem[entryOff+4])
		delete(forward, b)
		forward[cp] = b
		reverse[b] = cp
	}
	return forward, reverse, nil
}

// charMapOffset returns the byte offset of the character map, which
// immediately follows the value table.
func charMapOffset(mem []byte, hdr *header) int {
	off := int(hdr.valueTableOff) + 4
	count := getU32(mem[hdr.valueTableOff : hdr.valueTableOff+4])
	for i := uint32(0); i < count; i++ {
		klen := getU32(mem[off : off+4])
		off += 4 + int(klen)
		vlen := getU32(mem[off : off+4])
		off += 4 + int(vlen)
	}
	return off
}

func getU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Close unmaps the file and releases its descriptor. Calling any query
// method after Close, or while another goroutine holds an outstanding
// result derived from the mapped region, is a caller error.
func (r *Reader) Close() error {
	if err := munmapFile(r.mem); err != nil {
		return err
	}
	if r.f != nil {
		if err := r.f.Close(); err != nil {
			return newErr(KindIOFailure, "closing file", err)
		}
	}
	return nil
}

func (r *Reader) nodeRecordAt(c nodeCursor) nodeRecord {
	b := r.mem[c : int(c)+nodeRecordSize]
	return unmarshalNodeRecord(b)
}

func (r *Reader) rootCursor() nodeCursor { return nodeCursor(r.hdr.rootOffset) }

func (r *Reader) isTerminal(c nodeCursor) bool {
	return r.nodeRecordAt(c).flags&nodeFlagTerminal != 0
}

func (r *Reader) nodeValueIndex(c nodeCursor) (uint32, bool) {
	rec := r.nodeRecordAt(c)
	if rec.flags&nodeFlagHasValue == 0 {
		return 0, false
	}
	return rec.valueIndex, true
}

func (r *Reader) edgeCount(c nodeCursor) int {
	return int(r.nodeRecordAt(c).edgeCount)
}

// edgeUnitAt returns the unit labeling the i-th outgoing edge of c, in
// ascending order (0 <= i < edgeCount(c)).
func (r *Reader) edgeUnitAt(c nodeCursor, i int) rune {
	rec := r.nodeRecordAt(c)
	off := int(rec.edgesOffset) + i*edgeRecordSize
	b := r.mem[off : off+edgeRecordSize]
	if r.hdr.isNarrow() {
		unit, _ := unmarshalNarrowEdge(b)
		return rune(unit)
	}
	unit, _ := unmarshalWideEdge(b)
	return unit
}

// edgeChildAt returns the cursor reached by the i-th outgoing edge.
func (r *Reader) edgeChildAt(c nodeCursor, i int) nodeCursor {
	rec := r.nodeRecordAt(c)
	off := int(rec.edgesOffset) + i*edgeRecordSize
	b := r.mem[off : off+edgeRecordSize]
	var target uint32
	if r.hdr.isNarrow() {
		_, target = unmarshalNarrowEdge(b)
	} else {
		_, target = unmarshalWideEdge(b)
	}
	return nodeCursor(int(r.hdr.rootOffset) + int(target)*nodeRecordSize)
}

// getEdge performs a binary search over node c's sorted edge array for
// unit.
func (r *Reader) getEdge(c nodeCursor, unit rune) (nodeCursor, bool) {
	n := r.edgeCount(c)
	lo, hi := 0, n
	for lo < hi {
		mid := (lo + hi) / 2
		u := r.edgeUnitAt(c, mid)
		switch {
		case u == unit:
			return r.edgeChildAt(c, mid), true
		case u < unit:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, false
}

// valueBytesAt returns the raw value bytes of the idx-th entry of the
// value table, without decoding them. Decoding (integer payloads,
// tracked per-node by nodeFlagIntValue, and character encoding) is done
// by valueAt, which already has the node's flags in hand.
func (r *Reader) valueBytesAt(idx uint32) []byte {
	off := int(r.hdr.valueTableOff) + 4
	for i := uint32(0); i < idx; i++ {
		klen := getU32(r.mem[off : off+4])
		off += 4 + int(klen)
		vlen := getU32(r.mem[off : off+4])
		off += 4 + int(vlen)
	}
	klen := getU32(r.mem[off : off+4])
	off += 4 + int(klen)
	vlen := getU32(r.mem[off : off+4])
	off += 4
	return r.mem[off : off+int(vlen)]
}

// valueAt decodes the value attached to a node, given its record.
func (r *Reader) valueAt(rec nodeRecord) Value {
	if rec.flags&nodeFlagHasValue == 0 {
		return NoValue
	}
	raw := r.valueBytesAt(rec.valueIndex)
	if rec.flags&nodeFlagIntValue != 0 {
		if len(raw) < 8 {
			return NoValue
		}
		n := uint64(getU32(raw[0:4])) | uint64(getU32(raw[4:8]))<<32
		return IntValue(n)
	}
	if r.hdr.flags&flagASCII != 0 {
		return BytesValue(raw)
	}
	// Outside ascii-only mode each character occupies four
	// little-endian bytes in code-point form (see encodeChars).
	runes := make([]rune, len(raw)/4)
	for i := range runes {
		runes[i] = rune(getU32(raw[4*i : 4*i+4]))
	}
	return StringValue(string(runes))
}
