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

type CallStack struct {
	Addresses [STACK_DEPTH]uint16
	// Next free slot
	Pointer uint8
}

func (cs *CallStack) Push(addr uint16) error {
	if int(cs.Pointer) >= len(cs.Addresses) {
		return ErrStackOverflow
	}

	cs.Addresses[cs.Pointer] = addr
	cs.Pointer++
	return nil
}

func (cs *CallStack) Pop() (uint16, error) {
	if cs.Pointer == 0 {
		return 0, ErrStackUnderflow
	}

	cs.Pointer--
	return cs.Addresses[cs.Pointer], nil
}

func (cs *CallStack) Len() int {
	return int(cs.Pointer)
}

func (cs *CallStack) Reset() {
	*cs = CallStack{}
}
