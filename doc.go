// doc.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

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

// Package dawg builds, queries, and persists a Directed Acyclic Word
// Graph (DAWG): a minimal deterministic automaton that recognizes a
// fixed set of keys, optionally mapping each accepted key to a value.
//
// A caller mutates an automaton with [Automaton.Add], then calls
// [Automaton.Minimize] once to collapse suffix-sharing states. The
// result can be queried directly ([Automaton.Contains],
// [Automaton.Lookup], [Automaton.FindPrefixes]) or persisted with
// [Automaton.SaveBinary] to a fixed-width container that [Open] can
// memory-map and query without ever materializing a graph in memory.
//
// The package automatically chooses the narrowest alphabet encoding
// that fits the current key set (ASCII, a 7-bit compressed Unicode
// mapping, or full 32-bit code points) and transparently upgrades as
// new keys are added; see [Automaton.Stats] to inspect the current
// mode.
package dawg
