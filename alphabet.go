// alphabet.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// The encoding policy: decides whether the automaton's edges carry raw
// ASCII, a 7-bit compressed Unicode remap, or full 32-bit code points,
// and owns the bidirectional map between the two.
//
// This generalizes GoSkrafl's single, statically-chosen Alphabet
// (dawg.go: one fixed rune string per dictionary, encoded via a Coding
// map from byte index back to rune) into three live modes that a
// builder can move between as its key set grows. The membership idea
// behind GoSkrafl's Alphabet.MakeSet/Member is reused here, as a map of
// taken bytes, for the remap-slot free-list instead of for rack checks.

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

// encodingMode is the alphabet's current representation.
type encodingMode uint8

const (
	modeASCII encodingMode = iota
	modeCompressed7
	modeWide
)

func (m encodingMode) String() string {
	switch m {
	case modeASCII:
		return "ascii"
	case modeCompressed7:
		return "compressed7"
	default:
		return "wide"
	}
}

// remapSlots is the fixed set of 89 printable bytes Compressed-7 may
// assign to a non-identity unit (spec §4.2).
var remapSlots = buildRemapSlots()

func buildRemapSlots() []byte {
	var slots []byte
	for c := 'a'; c <= 'z'; c++ {
		slots = append(slots, byte(c))
	}
	for c := 'A'; c <= 'Z'; c++ {
		slots = append(slots, byte(c))
	}
	for c := '0'; c <= '9'; c++ {
		slots = append(slots, byte(c))
	}
	for _, c := range "!#$%&()*+,-.:;<=>?@[]^_{|}~" {
		slots = append(slots, byte(c))
	}
	return slots
}

// maxCompressedUnits is len(remapSlots): 26+26+10+27 == 89.
const maxCompressedUnits = 89

// alphabet encodes/decodes input units for the automaton's current
// mode. In ASCII and Wide mode the encoded "unit" is the code point
// itself; in Compressed-7 mode it is the single byte assigned to that
// code point.
type alphabet struct {
	mode    encodingMode
	forward map[rune]rune // codepoint -> encoded unit (compressed7 only)
	reverse map[rune]rune // encoded unit -> codepoint (compressed7 only)
}

func newASCIIAlphabet() *alphabet {
	return &alphabet{mode: modeASCII}
}

func newWideAlphabet() *alphabet {
	return &alphabet{mode: modeWide}
}

// newCompressedAlphabet builds a Compressed-7 alphabet for the given
// set of distinct code points, or returns ok=false if they cannot all
// be packed into the 89 remap slots.
func newCompressedAlphabet(units map[rune]struct{}) (*alphabet, bool) {
	forward := make(map[rune]rune, len(units))
	reverse := make(map[rune]rune, len(units))
	taken := make(map[byte]bool, len(units))

	// Pass 1: ASCII units pass through as identity, per spec ("the
	// forward table covers both pass-through ASCII units and remapped
	// non-ASCII units").
	var nonASCII []rune
	for u := range units {
		if u >= 0 && u <= 127 {
			forward[u] = u
			reverse[u] = u
			taken[byte(u)] = true
		} else {
			nonASCII = append(nonASCII, u)
		}
	}
	sort.Slice(nonASCII, func(i, j int) bool { return nonASCII[i] < nonASCII[j] })

	// Pass 2: assign remap slots to non-ASCII units in deterministic
	// order, skipping any slot already claimed by an ASCII pass-through
	// (spec: "a unit may be used as a remap slot only if it does not
	// itself appear anywhere in the current key or value set").
	slotIdx := 0
	for _, u := range nonASCII {
		for slotIdx < len(remapSlots) && taken[remapSlots[slotIdx]] {
			slotIdx++
		}
		if slotIdx >= len(remapSlots) {
			return nil, false
		}
		slot := remapSlots[slotIdx]
		taken[slot] = true
		forward[u] = rune(slot)
		reverse[rune(slot)] = u
		slotIdx++
	}
	return &alphabet{mode: modeCompressed7, forward: forward, reverse: reverse}, true
}

// encode maps a code point to the unit the current mode stores on
// edges, returning ok=false if the mode cannot represent it.
func (a *alphabet) encode(r rune) (rune, bool) {
	switch a.mode {
	case modeASCII:
		if r < 0 || r > 127 {
			return 0, false
		}
		return r, true
	case modeCompressed7:
		u, ok := a.forward[r]
		return u, ok
	default: // modeWide
		return r, true
	}
}

// decode maps an internal unit back to its code point.
func (a *alphabet) decode(u rune) rune {
	if a.mode == modeCompressed7 {
		return a.reverse[u]
	}
	return u
}

// admitsAll reports whether every rune in rs can be encoded without a
// mode change.
func (a *alphabet) admitsAll(rs []rune) bool {
	for _, r := range rs {
		if _, ok := a.encode(r); !ok {
			return false
		}
	}
	return true
}

// unitCount returns the number of distinct units this alphabet maps,
// i.e. Stats().MappedUnits. Only meaningful (and non-zero) in
// Compressed-7 mode.
func (a *alphabet) unitCount() int {
	if a.mode != modeCompressed7 {
		return 0
	}
	return len(a.forward)
}

// chooseMode implements the decision function of spec §4.2 given the
// full set of distinct code points that must be representable
// (existing keys/values plus whatever triggered the re-evaluation).
func chooseMode(units map[rune]struct{}) (*alphabet, error) {
	allASCII := true
	for u := range units {
		if u < 0 || u > 127 {
			allASCII = false
			break
		}
	}
	if len(units) <= 127 && allASCII {
		return newASCIIAlphabet(), nil
	}
	if len(units) <= maxCompressedUnits {
		if a, ok := newCompressedAlphabet(units); ok {
			return a, nil
		}
	}
	return newWideAlphabet(), nil
}
