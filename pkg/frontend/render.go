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

package frontend

import (
	"strings"

	"github.com/lassandro/gochip8/pkg/machine"
)

var (
	colorOn  = [4]byte{0xE0, 0xF0, 0xE0, 0xFF}
	colorOff = [4]byte{0x10, 0x14, 0x10, 0xFF}
)

// RenderPixels fills dst with RGBA pixels for fb at the given scale. The
// last row and column of every cell stay dark so lit pixels show a grid.
func RenderPixels(fb *machine.Framebuffer, scale int, dst []byte) {
	stride := machine.SCREEN_WIDTH * scale * 4

	for py := 0; py < machine.SCREEN_HEIGHT*scale; py++ {
		for px := 0; px < machine.SCREEN_WIDTH*scale; px++ {
			color := colorOff

			gap := scale > 1 && (px%scale == scale-1 || py%scale == scale-1)

			if !gap && fb.Pixel(px/scale, py/scale) {
				color = colorOn
			}

			copy(dst[py*stride+px*4:], color[:])
		}
	}
}

// RenderHalfBlocks draws fb as text, packing two pixel rows into each line
// with the upper and lower half block characters.
func RenderHalfBlocks(fb *machine.Framebuffer) string {
	var builder strings.Builder

	builder.Grow((machine.SCREEN_WIDTH*3 + 1) * machine.SCREEN_HEIGHT / 2)

	for y := 0; y < machine.SCREEN_HEIGHT; y += 2 {
		for x := 0; x < machine.SCREEN_WIDTH; x++ {
			top := fb.Pixel(x, y)
			bottom := fb.Pixel(x, y+1)

			switch {
			case top && bottom:
				builder.WriteRune('█')
			case top:
				builder.WriteRune('▀')
			case bottom:
				builder.WriteRune('▄')
			default:
				builder.WriteByte(' ')
			}
		}

		builder.WriteByte('\n')
	}

	return builder.String()
}
