// serializer_text.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// The portable text/JSON interchange format: a key/value list plus,
// for Compressed-7 mode, the character map. This path trades the
// binary container's zero-deserialization property for human-readable
// diffs and cross-version portability; the JSON round-trip is
// best-effort rather than a byte-exact contract. No third-party JSON
// library fits here, so encoding/json is the grounded choice rather
// than a fallback (see DESIGN.md).

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
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// textValueKind tags how a textDoc entry's value was encoded, since
// JSON itself does not distinguish "integer" from "byte string that
// looks numeric."
type textValueKind string

const (
	textValueNone  textValueKind = "none"
	textValueInt   textValueKind = "int"
	textValueBytes textValueKind = "bytes"
	textValueAny   textValueKind = "any"
)

type textCharMapEntry struct {
	CodePoint int32 `json:"cp"`
	Byte      uint8 `json:"byte"`
}

type textEntry struct {
	Key        string          `json:"key"`
	ValueKind  textValueKind   `json:"value_kind"`
	ValueInt   uint64          `json:"value_int,omitempty"`
	ValueBytes string          `json:"value_bytes,omitempty"` // base64
	ValueAny   json.RawMessage `json:"value_any,omitempty"`
}

type textDoc struct {
	Version  int                `json:"version"`
	Encoding string             `json:"encoding"`
	CharMap  []textCharMapEntry `json:"char_map,omitempty"`
	Entries  []textEntry        `json:"entries"`
}

const textFormatVersion = 1

// SaveText writes the automaton to path as portable JSON. The write
// is atomic, the same write-to-temp-then-rename pattern SaveBinary
// uses.
func (a *Automaton) SaveText(path string) error {
	doc := textDoc{
		Version:  textFormatVersion,
		Encoding: a.alphabet.mode.String(),
	}
	if a.alphabet.mode == modeCompressed7 {
		for cp, unit := range a.alphabet.forward {
			if cp == unit {
				continue
			}
			doc.CharMap = append(doc.CharMap, textCharMapEntry{CodePoint: int32(cp), Byte: uint8(unit)})
		}
		// Deterministic order keeps repeated SaveText calls byte-identical,
		// matching marshalCharMap's tie-breaking in the binary path.
		for i := 1; i < len(doc.CharMap); i++ {
			for j := i; j > 0 && doc.CharMap[j-1].CodePoint > doc.CharMap[j].CodePoint; j-- {
				doc.CharMap[j-1], doc.CharMap[j] = doc.CharMap[j], doc.CharMap[j-1]
			}
		}
	}
	for _, kv := range a.collect() {
		te := textEntry{Key: string(kv.key)}
		switch kv.value.kind {
		case valueNone:
			te.ValueKind = textValueNone
		case valueInt:
			te.ValueKind = textValueInt
			te.ValueInt = kv.value.asInt
		case valueOther:
			raw, err := json.Marshal(kv.value.other)
			if err != nil {
				return newErr(KindIOFailure, "encoding value for text document", err)
			}
			te.ValueKind = textValueAny
			te.ValueAny = raw
		default: // valueBytes
			te.ValueKind = textValueBytes
			te.ValueBytes = base64.StdEncoding.EncodeToString(kv.value.asRaw)
		}
		doc.Entries = append(doc.Entries, te)
	}

	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return newErr(KindIOFailure, "encoding text document", err)
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

// OpenText reads a portable JSON document written by SaveText and
// rebuilds an equivalent, unminimized automaton.
func OpenText(path string) (*Automaton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newErr(KindIOFailure, "reading text document", err)
	}
	var doc textDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, newErr(KindBadContainer, "parsing text document", err)
	}

	entries := make([]keyValue, 0, len(doc.Entries))
	for _, te := range doc.Entries {
		var v Value
		switch te.ValueKind {
		case textValueInt:
			v = IntValue(te.ValueInt)
		case textValueBytes:
			raw, err := base64.StdEncoding.DecodeString(te.ValueBytes)
			if err != nil {
				return nil, newErr(KindBadContainer, "decoding base64 value", err)
			}
			v = BytesValue(raw)
		case textValueAny:
			var parsed any
			if err := json.Unmarshal(te.ValueAny, &parsed); err != nil {
				return nil, newErr(KindBadContainer, "decoding any-value", err)
			}
			v = Value{kind: valueOther, other: parsed}
		default:
			v = NoValue
		}
		entries = append(entries, keyValue{key: []rune(te.Key), value: v})
	}

	units := make(map[rune]struct{})
	for _, kv := range entries {
		for _, r := range kv.key {
			units[r] = struct{}{}
		}
		if s, ok := kv.value.String(); ok {
			for _, r := range s {
				units[r] = struct{}{}
			}
		}
	}

	var ab *alphabet
	switch doc.Encoding {
	case modeASCII.String():
		ab = newASCIIAlphabet()
	case modeCompressed7.String():
		forward := make(map[rune]rune, len(doc.CharMap))
		reverse := make(map[rune]rune, len(doc.CharMap))
		for u := range units {
			if u >= 0 && u <= 127 {
				forward[u] = u
				reverse[u] = u
			}
		}
		for _, e := range doc.CharMap {
			forward[rune(e.CodePoint)] = rune(e.Byte)
			reverse[rune(e.Byte)] = rune(e.CodePoint)
		}
		ab = &alphabet{mode: modeCompressed7, forward: forward, reverse: reverse}
	default:
		ab = newWideAlphabet()
	}

	a := New()
	a.fresh(ab, entries)
	return a, nil
}

// IsBinaryContainer sniffs the first four bytes of path to decide
// whether it is a binary container or a text document: a magic match
// means the binary path, anything else falls back to the text parser.
func IsBinaryContainer(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, newErr(KindIOFailure, "opening file", err)
	}
	defer f.Close()
	var buf [4]byte
	n, err := f.Read(buf[:])
	if err != nil && n == 0 {
		return false, nil
	}
	return n == 4 && buf == [4]byte{magicD, magicA, magicW, magicG}, nil
}
