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

const (
	MEMORY_SIZE    = 4096
	REGISTER_COUNT = 16
	STACK_DEPTH    = 16
	KEY_COUNT      = 16

	SCREEN_WIDTH  = 64
	SCREEN_HEIGHT = 32

	SPRITE_WIDTH = 8
	GLYPH_SIZE   = 5

	INSTRUCTION_SIZE = 2
)

const (
	MEMSPACE_RESERVED uint16 = 0x000
	MEMSPACE_FONT     uint16 = 0x050
	MEMSPACE_PROGRAM  uint16 = 0x200
)

// Register VF doubles as the carry, borrow, shift and collision flag.
const REG_FLAG = 0xF

const (
	TIMER_HZ       = 60
	DEFAULT_CPU_HZ = 700
	MAX_ROM_SIZE   = MEMORY_SIZE - int(MEMSPACE_PROGRAM)
)

const (
	STATUS_RUNNING Status = iota
	STATUS_AWAITING_KEY
	STATUS_FAULTED
)

var font = [16 * GLYPH_SIZE]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Font returns a copy of the built-in hex digit glyphs.
func Font() []byte {
	glyphs := make([]byte, len(font))
	copy(glyphs, font[:])
	return glyphs
}
