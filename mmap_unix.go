// mmap_unix.go
// Copyright (C) 2023 Vilhjálmur Þorsteinsson / Miðeind ehf.

// Modeled on SnellerInc-sneller's mmap_linux.go / cmd/sdb/mmap_linux.go:
// syscall.Mmap with PROT_READ|MAP_PRIVATE gives a read-only view of
// the container with zero copy and zero parse cost.

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

//go:build linux || darwin

package dawg

import (
	"os"

	"golang.org/x/sys/unix"
)

func mmapFile(f *os.File, size int) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, newErr(KindIOFailure, "mmap", err)
	}
	return mem, nil
}

func munmapFile(mem []byte) error {
	if len(mem) == 0 {
		return nil
	}
	if err := unix.Munmap(mem); err != nil {
		return newErr(KindIOFailure, "munmap", err)
	}
	return nil
}
