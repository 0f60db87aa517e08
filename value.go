// value.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Values attached to terminal nodes. Two classes round-trip through
// the binary container: non-negative integers and byte-strings. Richer
// in-memory values are allowed but only the text (JSON) interchange
// format promises to round-trip them.

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

import "fmt"

type valueKind uint8

const (
	valueNone valueKind = iota
	valueInt
	valueBytes
	valueOther
)

// Value is the payload optionally attached to an accepted key.
type Value struct {
	kind  valueKind
	asInt uint64
	asRaw []byte
	other any
}

// NoValue is the zero Value: a terminal key with no payload.
var NoValue = Value{kind: valueNone}

// IntValue wraps a non-negative integer value.
func IntValue(n uint64) Value {
	return Value{kind: valueInt, asInt: n}
}

// StringValue wraps a string value.
func StringValue(s string) Value {
	return Value{kind: valueBytes, asRaw: []byte(s)}
}

// BytesValue wraps a byte-string value.
func BytesValue(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: valueBytes, asRaw: cp}
}

// AnyValue wraps an arbitrary Go value. It survives minimize/add/lookup
// in memory and through the text interchange format, but SaveBinary
// falls back to its fmt.Sprintf representation (lossy, documented in
// DESIGN.md) since the binary container only has tags for int and bytes.
func AnyValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return NoValue
	case uint64:
		return IntValue(t)
	case int:
		if t >= 0 {
			return IntValue(uint64(t))
		}
	case string:
		return StringValue(t)
	case []byte:
		return BytesValue(t)
	}
	return Value{kind: valueOther, other: v}
}

// HasValue reports whether v carries a payload at all.
func (v Value) HasValue() bool { return v.kind != valueNone }

// Int returns the wrapped integer and true, or (0, false) if v does
// not hold an integer.
func (v Value) Int() (uint64, bool) {
	if v.kind != valueInt {
		return 0, false
	}
	return v.asInt, true
}

// Bytes returns the wrapped byte-string and true, or (nil, false) if v
// does not hold one.
func (v Value) Bytes() ([]byte, bool) {
	if v.kind != valueBytes {
		return nil, false
	}
	return v.asRaw, true
}

// String returns the wrapped byte-string as a string and true, or
// ("", false) if v does not hold one.
func (v Value) String() (string, bool) {
	b, ok := v.Bytes()
	if !ok {
		return "", false
	}
	return string(b), true
}

// Any returns the wrapped value as an interface{}, regardless of kind.
func (v Value) Any() any {
	switch v.kind {
	case valueNone:
		return nil
	case valueInt:
		return v.asInt
	case valueBytes:
		return string(v.asRaw)
	default:
		return v.other
	}
}

func (v Value) equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case valueNone:
		return true
	case valueInt:
		return v.asInt == o.asInt
	case valueBytes:
		return string(v.asRaw) == string(o.asRaw)
	default:
		return fmt.Sprintf("%v", v.other) == fmt.Sprintf("%v", o.other)
	}
}

// binaryBytes returns a byte-string representation of v: the raw bytes
// for valueBytes, the decimal digits for valueInt, and a best-effort
// fmt rendering for anything else, which the binary format is not
// obliged to round-trip. The binary container's value table uses it
// only for valueOther; integers are written there as 8 little-endian
// bytes by marshalValueTable.
func (v Value) binaryBytes() []byte {
	switch v.kind {
	case valueBytes:
		return v.asRaw
	case valueInt:
		return []byte(fmt.Sprintf("%d", v.asInt))
	case valueOther:
		return []byte(fmt.Sprintf("%v", v.other))
	default:
		return nil
	}
}
