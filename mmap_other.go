// mmap_other.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Fallback for platforms without a Mmap syscall wired up (grounded in
// SnellerInc-sneller's tenant/dcache/file_other.go, which falls back to
// io.ReadAll on !linux). The Reader's query surface is identical either
// way; only the zero-copy property is lost off the happy path.

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

//go:build !linux && !darwin

package dawg

import "os"

func mmapFile(f *os.File, size int) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, newErr(KindIOFailure, "reading file", err)
	}
	return buf, nil
}

func munmapFile(mem []byte) error {
	return nil
}
