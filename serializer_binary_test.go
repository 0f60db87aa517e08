// serializer_binary_test.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Tests for the fixed-width binary container: the spec's S4 round-trip scenario, narrow/wide edge-record coverage, and rejection of a malformed header.

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
	"reflect"
	"testing"
)

// S4 - binary round-trip with values.
func TestScenarioS4BinaryRoundTrip(t *testing.T) {
	a := New()
	entries := map[string]uint64{"apple": 1, "banana": 2, "cherry": 3}
	for k, v := range entries {
		if err := a.Add(k, IntValue(v)); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "fruit.dawg")
	if err := a.SaveBinary(path); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	for k, want := range entries {
		v, ok := r.Lookup(k)
		if !ok {
			t.Fatalf("reader lookup(%q) missed", k)
		}
		if n, _ := v.Int(); n != want {
			t.Fatalf("reader lookup(%q) = %d, want %d", k, n, want)
		}
	}
	if r.Contains("grape") {
		t.Fatal("reader should not contain an unrelated key")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var magic [4]byte
	copy(magic[:], data[:4])
	want := [4]byte{'D', 'A', 'W', 'G'}
	if magic != want {
		t.Fatalf("magic bytes = %v, want %v", magic, want)
	}
}

// manyDistinctUnitKeys returns keys covering 100 distinct CJK code
// points (one per key, plus a shared ASCII suffix), well past the
// 89-slot Compressed-7 budget, so a set built from them must land in
// wide mode rather than Compressed-7.
func manyDistinctUnitKeys() []string {
	keys := make([]string, 0, 100)
	for r := rune(0x4e00); r < 0x4e00+100; r++ {
		keys = append(keys, string(r)+"x")
	}
	return keys
}

// TestBinaryRoundTripNarrowAndWide exercises both the narrow (ASCII and
// Compressed-7) and wide edge-record forms through the same save/open
// path.
func TestBinaryRoundTripNarrowAndWide(t *testing.T) {
	cases := []struct {
		name string
		keys []string
	}{
		{"ascii", []string{"alpha", "also", "bravo"}},
		{"compressed7", []string{"你好", "世界", "hello"}},
		{"wide", manyDistinctUnitKeys()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := New()
			for _, k := range c.keys {
				if err := a.Add(k, NoValue); err != nil {
					t.Fatal(err)
				}
			}
			if err := a.Minimize(); err != nil {
				t.Fatal(err)
			}
			st := a.Stats()
			if c.name == "wide" && (st.IsASCIIOnly || st.IsCompressed) {
				t.Fatalf("expected wide mode for >89 distinct units, got stats=%+v", st)
			}
			path := filepath.Join(t.TempDir(), "words.dawg")
			if err := a.SaveBinary(path); err != nil {
				t.Fatal(err)
			}
			r, err := Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			if c.name == "wide" && (r.Stats().IsASCIIOnly || r.Stats().IsCompressed) {
				t.Fatalf("expected reader to report wide mode, got stats=%+v", r.Stats())
			}
			got := r.AllKeys()
			want := a.AllKeys()
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("reader.AllKeys() = %v, want %v", got, want)
			}
		})
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.dawg")
	if err := os.WriteFile(path, make([]byte, headerSize), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected Open to reject a file with a zeroed header")
	}
}
