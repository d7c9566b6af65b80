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

// Framebuffer is row-major: Framebuffer[y][x].
type Framebuffer [SCREEN_HEIGHT][SCREEN_WIDTH]bool

func (fb *Framebuffer) Clear() {
	*fb = Framebuffer{}
}

func (fb *Framebuffer) Pixel(x, y int) bool {
	return fb[y%SCREEN_HEIGHT][x%SCREEN_WIDTH]
}

// Draw XORs sprite onto the screen with its origin at (x, y). The origin
// wraps once, then every pixel wraps on its own. Returns true when any set
// pixel was turned off.
func (fb *Framebuffer) Draw(x, y uint8, sprite []byte) bool {
	originX := int(x) % SCREEN_WIDTH
	originY := int(y) % SCREEN_HEIGHT
	collision := false

	for row, bits := range sprite {
		py := (originY + row) % SCREEN_HEIGHT

		for col := 0; col < SPRITE_WIDTH; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}

			px := (originX + col) % SCREEN_WIDTH

			if fb[py][px] {
				collision = true
			}

			fb[py][px] = !fb[py][px]
		}
	}

	return collision
}

// Lit counts the pixels currently set.
func (fb *Framebuffer) Lit() int {
	count := 0

	for y := range fb {
		for x := range fb[y] {
			if fb[y][x] {
				count++
			}
		}
	}

	return count
}
