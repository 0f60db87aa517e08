// automaton_test.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Tests for the Automaton Core: basic insert/lookup, the spec's S1-S3 scenarios, minimize consistency, the unshare-before-add safety property, and rebuild behavior.

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
	"errors"
	"reflect"
	"testing"
)

func TestAutomatonBasicInsertAndLookup(t *testing.T) {
	a := New()
	if err := a.Add("car", NoValue); err != nil {
		t.Fatal(err)
	}
	if !a.Contains("car") {
		t.Fatal("expected car to be contained")
	}
	if a.Contains("ca") {
		t.Fatal("ca should not be accepted on its own")
	}
	if a.Contains("care") {
		t.Fatal("care should not be accepted")
	}
}

// S1 - minimized prefix share.
func TestScenarioS1MinimizedPrefixShare(t *testing.T) {
	a := New()
	for _, k := range []string{"car", "cars", "cat", "cats"} {
		if err := a.Add(k, NoValue); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}
	if n := a.Stats().NodeCount; n > 7 {
		t.Fatalf("expected node_count <= 7 after minimize, got %d", n)
	}
	got := a.FindPrefixes("ca")
	want := []string{"car", "cars", "cat", "cats"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("find_prefixes(ca) = %v, want %v", got, want)
	}
}

// S2 - value overwrite.
func TestScenarioS2ValueOverwrite(t *testing.T) {
	a := New()
	if err := a.Add("duplicate", IntValue(1)); err != nil {
		t.Fatal(err)
	}
	if err := a.Add("duplicate", IntValue(100)); err != nil {
		t.Fatal(err)
	}
	v, ok := a.Lookup("duplicate")
	if !ok {
		t.Fatal("expected duplicate to be found")
	}
	n, ok := v.Int()
	if !ok || n != 100 {
		t.Fatalf("lookup(duplicate).value = %v, want 100", v.Any())
	}
	if got := a.AllKeys(); !reflect.DeepEqual(got, []string{"duplicate"}) {
		t.Fatalf("all_keys() = %v, want [duplicate]", got)
	}
}

// S3 - auto-compress then auto-widen.
func TestScenarioS3EncodingTransitions(t *testing.T) {
	a := New()
	if err := a.Add("hello", NoValue); err != nil {
		t.Fatal(err)
	}
	if !a.Stats().IsASCIIOnly {
		t.Fatal("expected ascii-only after adding hello")
	}

	if err := a.Add("привет", NoValue); err != nil {
		t.Fatal(err)
	}
	st := a.Stats()
	if !st.IsCompressed {
		t.Fatalf("expected compressed-unicode after adding привет, got stats=%+v", st)
	}
	if st.MappedUnits != 10 {
		t.Fatalf("expected 10 distinct units, got %d", st.MappedUnits)
	}

	// The 48 basic Greek letters plus the 32 code points U+03D0..U+03EF,
	// together with the 10 units above and the 4 of "你好世界", make 94
	// distinct units.
	greekLetters := []rune("αβγδεζηθικλμνξοπρστυφχψω" + "ΑΒΓΔΕΖΗΘΙΚΛΜΝΞΟΠΡΣΤΥΦΧΨΩ")
	for r := rune(0x03D0); r <= 0x03EF; r++ {
		greekLetters = append(greekLetters, r)
	}
	for _, r := range greekLetters {
		if err := a.Add(string(r), NoValue); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Add("你好世界", NoValue); err != nil {
		t.Fatal(err)
	}

	st = a.Stats()
	if st.IsASCIIOnly || st.IsCompressed {
		t.Fatalf("expected wide mode once distinct units exceed 89, got stats=%+v", st)
	}

	for _, k := range []string{"hello", "привет", "你好世界"} {
		if !a.Contains(k) {
			t.Fatalf("expected %q to still be accepted after encoding upgrades", k)
		}
	}
}

func TestAddEmptyKeyMarksRootTerminal(t *testing.T) {
	a := New()
	if err := a.Add("", IntValue(7)); err != nil {
		t.Fatal(err)
	}
	if !a.Contains("") {
		t.Fatal("expected empty key to be accepted")
	}
	v, ok := a.Lookup("")
	if !ok {
		t.Fatal("expected lookup(\"\") to succeed")
	}
	if n, _ := v.Int(); n != 7 {
		t.Fatalf("lookup(\"\") = %v, want 7", v.Any())
	}
}

func TestMinimizePreservesKeySet(t *testing.T) {
	a := New()
	keys := []string{"apple", "application", "apply", "banana", "band", "bandana"}
	for _, k := range keys {
		if err := a.Add(k, NoValue); err != nil {
			t.Fatal(err)
		}
	}
	before := a.AllKeys()
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}
	after := a.AllKeys()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("minimize changed the accepted key set: before=%v after=%v", before, after)
	}
	// Minimize is idempotent.
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}
}

func TestUnshareBeforeAddAfterMinimize(t *testing.T) {
	a := New()
	for _, k := range []string{"cat", "hat"} {
		if err := a.Add(k, NoValue); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}
	// After minimize, "cat" and "hat" share their "at" suffix node. Adding
	// a value-bearing terminal under that shared node must not leak onto
	// the sibling that shares the same suffix structure.
	if err := a.Add("cat", IntValue(1)); err != nil {
		t.Fatal(err)
	}
	v, ok := a.Lookup("hat")
	if !ok {
		t.Fatal("expected hat to remain accepted")
	}
	if v.HasValue() {
		t.Fatalf("hat must not have acquired cat's value, got %v", v.Any())
	}
	catVal, ok := a.Lookup("cat")
	if !ok {
		t.Fatal("expected cat to be accepted")
	}
	if n, _ := catVal.Int(); n != 1 {
		t.Fatalf("lookup(cat) = %v, want 1", catVal.Any())
	}
}

func TestRebuildASCIIRejectsNonASCII(t *testing.T) {
	a := New()
	if err := a.Add("привет", NoValue); err != nil {
		t.Fatal(err)
	}
	err := a.Rebuild(RebuildOptions{Encoding: RebuildASCII})
	if err == nil {
		t.Fatal("expected EncodingExceeded rebuilding non-ASCII data as ascii-only")
	}
	if !errors.Is(err, ErrEncodingExceeded) {
		t.Fatalf("expected KindEncodingExceeded, got %v", err)
	}
}

func TestRebuildPreservesMinimizedFlag(t *testing.T) {
	a := New()
	for _, k := range []string{"apple", "apply"} {
		if err := a.Add(k, NoValue); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}
	if err := a.Rebuild(RebuildOptions{Encoding: RebuildWide, PreserveMinimized: true}); err != nil {
		t.Fatal(err)
	}
	if !a.Stats().Minimized {
		t.Fatal("expected automaton to remain minimized after rebuild")
	}
	if a.Stats().IsASCIIOnly {
		t.Fatal("expected wide mode after RebuildWide")
	}
}

func TestDefaultRebuildOptionsPicksAutoAndPreservesMinimized(t *testing.T) {
	a := New()
	for _, k := range []string{"apple", "apply", "application"} {
		if err := a.Add(k, NoValue); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}
	if err := a.Rebuild(DefaultRebuildOptions()); err != nil {
		t.Fatal(err)
	}
	if !a.Stats().Minimized {
		t.Fatal("expected DefaultRebuildOptions to preserve the minimized flag")
	}
	if !a.Stats().IsASCIIOnly {
		t.Fatal("expected RebuildAuto to pick ascii mode for all-ASCII data")
	}
}
