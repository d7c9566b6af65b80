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

import (
	"math/rand/v2"

	"github.com/retroenv/retrogolib/log"
)

type Status uint8

// Keypad is the set of held keys, bit n set meaning key n is down.
type Keypad uint16

type Quirks struct {
	// 8xy6/8xyE shift Vy into Vx instead of shifting Vx in place.
	ShiftUsesVY bool
	// Bnnn jumps to xnn + Vx instead of nnn + V0.
	JumpUsesVX bool
	// Fx55/Fx65 leave I pointing past the last register transferred.
	MemoryIncrementsIndex bool
	// 8xy1/8xy2/8xy3 clear VF.
	LogicResetsFlag bool
}

type MachineState struct {
	Registers [REGISTER_COUNT]uint8
	Index     uint16
	Program   uint16
	Delay     uint8
	Sound     uint8

	Stack   CallStack
	Memory  Memory
	Display Framebuffer

	Status Status
	// Register receiving the key value while Status is STATUS_AWAITING_KEY.
	KeyTarget uint8
}

type MachineDebugger interface {
	Step(mc *Machine)
	Read(addr uint16, mc *Machine)
	Write(addr uint16, mc *Machine)
}

type Machine struct {
	State    MachineState
	Quirks   Quirks
	Strict   bool
	Keys     Keypad
	Clock    Clock
	Random   *rand.Rand
	Logger   *log.Logger
	Debugger MachineDebugger

	rom   []byte
	fault error
}

func (s Status) String() string {
	switch s {
	case STATUS_RUNNING:
		return "running"
	case STATUS_AWAITING_KEY:
		return "awaiting key"
	case STATUS_FAULTED:
		return "faulted"
	}

	return "<invalid>"
}

func (k Keypad) Down(key uint8) bool {
	return k&(1<<(key&0xF)) != 0
}

func (k Keypad) Press(key uint8) Keypad {
	return k | 1<<(key&0xF)
}

func (k Keypad) Release(key uint8) Keypad {
	return k &^ (1 << (key & 0xF))
}

// Lowest returns the lowest numbered key held in k.
func (k Keypad) Lowest() (uint8, bool) {
	for key := uint8(0); key < KEY_COUNT; key++ {
		if k.Down(key) {
			return key, true
		}
	}

	return 0, false
}
