// wildcard_test.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Tests for wildcard search: the spec's S5 scenario and a brute-force oracle agreement check.

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
	"reflect"
	"sort"
	"testing"
)

// S5 - wildcards.
func TestScenarioS5Wildcards(t *testing.T) {
	a := New()
	for _, k := range []string{"apple", "application", "apply", "banana"} {
		if err := a.Add(k, NoValue); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}

	if got, want := a.Wildcard("a?p*"), []string{"apple", "application", "apply"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("wildcard(a?p*) = %v, want %v", got, want)
	}
	if got, want := a.Wildcard("*tion"), []string{"application"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("wildcard(*tion) = %v, want %v", got, want)
	}
}

// Property 8 - a brute-force oracle over AllKeys agrees with the
// wildcard matcher on every pattern.
func TestWildcardAgreesWithBruteForceOracle(t *testing.T) {
	a := New()
	words := []string{"cat", "cats", "car", "cart", "dog", "dogs", "do"}
	for _, k := range words {
		if err := a.Add(k, NoValue); err != nil {
			t.Fatal(err)
		}
	}
	if err := a.Minimize(); err != nil {
		t.Fatal(err)
	}

	patterns := []string{"c?t", "c*t", "*og*", "do?", "*", "c?rt", "????"}
	for _, p := range patterns {
		got := a.Wildcard(p)
		want := bruteForceWildcard(a.AllKeys(), p)
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("wildcard(%q) = %v, want %v", p, got, want)
		}
	}
}

// bruteForceWildcard matches a pattern of literal units, `?`, and `*`
// against every key directly, independent of any DAWG traversal.
func bruteForceWildcard(keys []string, pattern string) []string {
	pat := []rune(pattern)
	var out []string
	for _, k := range keys {
		if matchPattern(pat, []rune(k)) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func matchPattern(pat, s []rune) bool {
	if len(pat) == 0 {
		return len(s) == 0
	}
	switch pat[0] {
	case '*':
		for i := 0; i <= len(s); i++ {
			if matchPattern(pat[1:], s[i:]) {
				return true
			}
		}
		return false
	case '?':
		if len(s) == 0 {
			return false
		}
		return matchPattern(pat[1:], s[1:])
	default:
		if len(s) == 0 || s[0] != pat[0] {
			return false
		}
		return matchPattern(pat[1:], s[1:])
	}
}
