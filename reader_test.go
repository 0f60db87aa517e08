// reader_test.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Tests for the memory-mapped Reader: the spec's S7 reader-equivalence scenario and container stats reporting.

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
	"path/filepath"
	"reflect"
	"testing"
)

// S7 - reader equivalence: for any key, the Reader and a freshly loaded
// in-memory automaton return identical Lookup results.
func TestScenarioS7ReaderEquivalence(t *testing.T) {
	a := New()
	entries := map[string]uint64{"car": 1, "cars": 2, "cat": 3, "cats": 4}
	for k, v := range entries {
		if err := a.Add(k, IntValue(v)); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "cars.dawg")
	if err := a.SaveBinary(path); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	fresh := New()
	for k, v := range entries {
		if err := fresh.Add(k, IntValue(v)); err != nil {
			t.Fatal(err)
		}
	}

	probes := []string{"car", "cars", "cat", "cats", "ca", "dog", ""}
	for _, k := range probes {
		wantV, wantOK := fresh.Lookup(k)
		gotV, gotOK := r.Lookup(k)
		if wantOK != gotOK {
			t.Fatalf("lookup(%q): reader ok=%v, automaton ok=%v", k, gotOK, wantOK)
		}
		if wantOK && !wantV.equal(gotV) {
			t.Fatalf("lookup(%q): reader=%v, automaton=%v", k, gotV.Any(), wantV.Any())
		}
	}

	gotPrefixes := r.FindPrefixes("ca")
	wantPrefixes := fresh.FindPrefixes("ca")
	if !reflect.DeepEqual(gotPrefixes, wantPrefixes) {
		t.Fatalf("reader.FindPrefixes(ca) = %v, want %v", gotPrefixes, wantPrefixes)
	}
}

func TestReaderStatsReflectsContainer(t *testing.T) {
	a := New()
	for _, k := range []string{"a", "an", "and"} {
		if err := a.Add(k, NoValue); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "small.dawg")
	if err := a.SaveBinary(path); err != nil {
		t.Fatal(err)
	}
	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	st := r.Stats()
	want := a.Stats()
	if st.NodeCount != want.NodeCount || st.EdgeCount != want.EdgeCount {
		t.Fatalf("reader stats = %+v, want node/edge counts matching %+v", st, want)
	}
	if !st.Minimized {
		t.Fatal("a container written from a minimized automaton should report Minimized=true")
	}
}
