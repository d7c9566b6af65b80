// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package machine

import "fmt"

type Memory [MEMORY_SIZE]byte

// Reset zeroes memory and burns the font back into the reserved area.
func (mem *Memory) Reset() {
	for i := range mem {
		mem[i] = 0x00
	}

	copy(mem[MEMSPACE_FONT:], font[:])
}

// Load copies rom into the program area. Nothing is written when rom does
// not fit.
func (mem *Memory) Load(rom []byte) error {
	if len(rom) > MAX_ROM_SIZE {
		return fmt.Errorf(
			"%w: %d bytes, %d available", ErrRomTooLarge, len(rom), MAX_ROM_SIZE,
		)
	}

	copy(mem[MEMSPACE_PROGRAM:], rom)
	return nil
}

func (mem *Memory) Read(addr uint16) (byte, error) {
	if int(addr) >= len(mem) {
		return 0, addressError(int(addr))
	}

	return mem[addr], nil
}

func (mem *Memory) Write(addr uint16, value byte) error {
	if int(addr) >= len(mem) {
		return addressError(int(addr))
	}

	mem[addr] = value
	return nil
}

// Span validates that count bytes starting at addr are addressable.
func (mem *Memory) Span(addr uint16, count int) error {
	if end := int(addr) + count; end > len(mem) {
		return addressError(end - 1)
	}

	return nil
}

// Dump returns a snapshot of the whole address space.
func (mem *Memory) Dump() []byte {
	image := make([]byte, len(mem))
	copy(image, mem[:])
	return image
}
