// serializer_text_test.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Tests for the portable JSON interchange format: structural round-trip stability and magic-byte format sniffing.

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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/yudai/gojsondiff"
)

// TestTextRoundTripStructurallyStable saves an automaton as portable
// text, reloads it, and saves it again; the two documents must be
// structurally identical even though the text path is best-effort and
// gives no byte-identical guarantee the way the binary container does.
// Comparing structurally via gojsondiff -- rather than byte-for-byte --
// tolerates incidental whitespace/ordering differences while still
// catching real drift.
func TestTextRoundTripStructurallyStable(t *testing.T) {
	a := New()
	entries := map[string]Value{
		"apple":  IntValue(1),
		"banana": StringValue("yellow"),
		"cherry": AnyValue(map[string]any{"color": "red", "pitted": false}),
		"ячмень": NoValue, // forces compressed-mode, exercising the char map
	}
	for k, v := range entries {
		if err := a.Add(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}
	if !a.Stats().IsCompressed {
		t.Fatalf("expected compressed-unicode mode, got stats=%+v", a.Stats())
	}

	dir := t.TempDir()
	path1 := filepath.Join(dir, "first.json")
	if err := a.SaveText(path1); err != nil {
		t.Fatal(err)
	}

	reloaded, err := OpenText(path1)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range entries {
		got, ok := reloaded.Lookup(k)
		if !ok {
			t.Fatalf("reloaded automaton missed key %q", k)
		}
		if v.HasValue() && !v.equal(got) {
			t.Fatalf("reloaded lookup(%q) = %v, want %v", k, got.Any(), v.Any())
		}
	}

	path2 := filepath.Join(dir, "second.json")
	if err := reloaded.SaveText(path2); err != nil {
		t.Fatal(err)
	}

	doc1 := unmarshalTextDocForTest(t, path1)
	doc2 := unmarshalTextDocForTest(t, path2)

	diff := gojsondiff.New().CompareObjects(doc1, doc2)
	if diff.Modified() {
		t.Fatalf("text round-trip is not structurally stable: %v vs %v", doc1, doc2)
	}
}

func unmarshalTextDocForTest(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	return out
}

// IsBinaryContainer must distinguish the two interchange formats by
// sniffing the magic bytes.
func TestIsBinaryContainerSniffsFormat(t *testing.T) {
	dir := t.TempDir()
	a := New()
	if err := a.Add("hello", NoValue); err != nil {
		t.Fatal(err)
	}

	binPath := filepath.Join(dir, "hello.dawg")
	if err := a.SaveBinary(binPath); err != nil {
		t.Fatal(err)
	}
	textPath := filepath.Join(dir, "hello.json")
	if err := a.SaveText(textPath); err != nil {
		t.Fatal(err)
	}

	if isBin, err := IsBinaryContainer(binPath); err != nil || !isBin {
		t.Fatalf("IsBinaryContainer(%s) = %v, %v, want true, nil", binPath, isBin, err)
	}
	if isBin, err := IsBinaryContainer(textPath); err != nil || isBin {
		t.Fatalf("IsBinaryContainer(%s) = %v, %v, want false, nil", textPath, isBin, err)
	}
}
