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
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// New returns a machine with cleared state, ready for LoadROM.
func New(logger *log.Logger) *Machine {
	mc := &Machine{
		Logger: logger,
		Random: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	mc.State.Reset()
	return mc
}

func (mc *MachineState) Reset() {
	for i := range mc.Registers {
		mc.Registers[i] = 0x00
	}

	mc.Memory.Reset()
	mc.Stack.Reset()
	mc.Display.Clear()

	mc.Index = 0x000
	mc.Program = MEMSPACE_PROGRAM
	mc.Delay = 0
	mc.Sound = 0

	mc.Status = STATUS_RUNNING
	mc.KeyTarget = 0
}

// LoadROM resets the machine and places rom at the program area. An
// oversized rom is rejected before any state is touched.
func (mc *Machine) LoadROM(rom []byte) error {
	if len(rom) > MAX_ROM_SIZE {
		return fmt.Errorf(
			"%w: %d bytes, %d available", ErrRomTooLarge, len(rom), MAX_ROM_SIZE,
		)
	}

	mc.rom = append(mc.rom[:0], rom...)
	mc.Reset()

	if mc.Logger != nil {
		mc.Logger.Debug("Loaded rom",
			log.Int("size", len(rom)),
			log.Hex("address", MEMSPACE_PROGRAM))
	}

	return nil
}

// Reset reinitialises every part of the machine and reloads the last rom.
// It is safe to call at any point, including while awaiting a key.
func (mc *Machine) Reset() {
	mc.State.Reset()
	mc.Clock.Reset()
	mc.Keys = 0
	mc.fault = nil

	// Already validated by LoadROM
	_ = mc.State.Memory.Load(mc.rom)
}

// SetKeys replaces the held key set. A key going down while the machine
// awaits one completes the pending Fx0A.
func (mc *Machine) SetKeys(keys Keypad) {
	pressed := keys &^ mc.Keys
	mc.Keys = keys

	if mc.State.Status != STATUS_AWAITING_KEY {
		return
	}

	if key, ok := pressed.Lowest(); ok {
		mc.State.Registers[mc.State.KeyTarget] = key
		mc.State.Status = STATUS_RUNNING
	}
}

// DecayTimers counts both timers down by one, stopping at zero.
func (mc *Machine) DecayTimers() {
	if mc.State.Delay > 0 {
		mc.State.Delay--
	}

	if mc.State.Sound > 0 {
		mc.State.Sound--
	}
}

// SoundActive reports whether the tone should be playing.
func (mc *Machine) SoundActive() bool {
	return mc.State.Sound > 0
}

// Fault returns the error that stopped the machine, if any.
func (mc *Machine) Fault() error {
	return mc.fault
}

// Tick advances simulated time by delta, decaying timers and executing
// instructions at their configured rates.
func (mc *Machine) Tick(delta time.Duration) error {
	return mc.Clock.Advance(delta, mc)
}

// Step runs a single fetch, decode and execute cycle. While awaiting a key
// nothing executes. On failure the program counter is left on the faulting
// instruction and the machine refuses to run until reset.
func (mc *Machine) Step() error {
	if mc.fault != nil {
		return fmt.Errorf("%w: %w", ErrFaulted, mc.fault)
	}

	if mc.State.Status == STATUS_AWAITING_KEY {
		return nil
	}

	program := mc.State.Program
	word, err := mc.fetch()

	if err != nil {
		return mc.raiseFault(program, word, err)
	}

	in := Decode(word)

	if mc.Logger != nil {
		mc.Logger.Debug("Step",
			log.Hex("pc", program),
			log.Hex("opcode", word),
			log.String("op", in.Op.String()))
	}

	if err := operations[in.Op](mc, in); err != nil {
		mc.State.Program = program
		return mc.raiseFault(program, word, err)
	}

	if mc.Debugger != nil {
		mc.Debugger.Step(mc)
	}

	return nil
}

func (mc *Machine) raiseFault(program, word uint16, err error) error {
	fault := &Fault{Program: program, Instruction: word, Err: err}

	mc.fault = fault
	mc.State.Status = STATUS_FAULTED

	if mc.Logger != nil {
		mc.Logger.Error("Machine fault",
			log.Hex("pc", program),
			log.Hex("opcode", word),
			log.Err(err))
	}

	return fault
}

// IsFault reports whether err came from a failed instruction rather than
// a timing or host problem.
func IsFault(err error) bool {
	var fault *Fault
	return errors.As(err, &fault)
}

func (mc *Machine) read(addr uint16) byte {
	if mc.Debugger != nil {
		mc.Debugger.Read(addr, mc)
	}

	return mc.State.Memory[addr]
}

func (mc *Machine) write(addr uint16, value byte) {
	mc.State.Memory[addr] = value

	if mc.Debugger != nil {
		mc.Debugger.Write(addr, mc)
	}
}

func (mc *Machine) randomByte() uint8 {
	if mc.Random == nil {
		return uint8(rand.UintN(256))
	}

	return uint8(mc.Random.UintN(256))
}
