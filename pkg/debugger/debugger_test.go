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

package debugger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lassandro/gochip8/pkg/assembler"
	"github.com/lassandro/gochip8/pkg/debugger"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/assert"
)

func newMachine(t *testing.T, rom []byte) *machine.Machine {
	t.Helper()

	mc := machine.New(nil)
	assert.NoError(t, mc.LoadROM(rom))
	return mc
}

func TestBreakpoint(t *testing.T) {
	mc := newMachine(t, []byte{0x00, 0xE0, 0x00, 0xE0, 0x00, 0xE0})

	var hits []uint16

	dbg := &debugger.Debugger{
		HandleBreak: func(dbg *debugger.Debugger, mc *machine.Machine) {
			hits = append(hits, mc.State.Program)
		},
	}

	assert.True(t, dbg.AddBreakpoint(0x204))
	assert.False(t, dbg.AddBreakpoint(0x204))
	mc.Debugger = dbg

	for i := 0; i < 3; i++ {
		assert.NoError(t, mc.Step())
	}

	assert.Equal(t, []uint16{0x204}, hits)
}

func TestBreakStepsEveryInstruction(t *testing.T) {
	mc := newMachine(t, []byte{0x00, 0xE0, 0x00, 0xE0})

	hits := 0

	dbg := &debugger.Debugger{
		Break: true,
		HandleBreak: func(dbg *debugger.Debugger, mc *machine.Machine) {
			hits++
		},
	}
	mc.Debugger = dbg

	assert.NoError(t, mc.Step())
	assert.NoError(t, mc.Step())
	assert.Equal(t, 2, hits)
}

func TestWatchpoint(t *testing.T) {
	mc := newMachine(t, []byte{
		0xA3, 0x00, // LD I, $300
		0x60, 0xAB, // LD V0, $AB
		0xF0, 0x55, // LD [I], V0
		0xF0, 0x65, // LD V0, [I]
	})

	var reads, writes []uint16

	dbg := &debugger.Debugger{
		HandleRead: func(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
			reads = append(reads, addr)
		},
		HandleWrite: func(addr uint16, dbg *debugger.Debugger, mc *machine.Machine) {
			writes = append(writes, addr)
		},
	}

	assert.True(t, dbg.AddWatchpoint(0x300, debugger.WriteWatch))
	assert.False(t, dbg.AddWatchpoint(0x300, debugger.WriteWatch))
	mc.Debugger = dbg

	for i := 0; i < 3; i++ {
		assert.NoError(t, mc.Step())
	}

	assert.Equal(t, []uint16{0x300}, writes)
	assert.Empty(t, reads)

	assert.True(t, dbg.AddWatchpoint(0x300, debugger.ReadWatch))
	assert.NoError(t, mc.Step())
	assert.Equal(t, []uint16{0x300}, reads)
	assert.Equal(t, uint8(0xAB), mc.State.Registers[0])
}

func TestPrintMem(t *testing.T) {
	mc := newMachine(t, []byte{0xA3, 0x00})

	var out bytes.Buffer
	dbg := &debugger.Debugger{Output: &out}

	dbg.PrintMem(&mc.State, 0x200, 2)

	assert.Contains(t, out.String(), "0x200")
	assert.Contains(t, out.String(), "a3")
}

func TestPrintMemStopsAtEnd(t *testing.T) {
	mc := newMachine(t, nil)

	var out bytes.Buffer
	dbg := &debugger.Debugger{Output: &out}

	dbg.PrintMem(&mc.State, 0xFFF, 16)

	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestPrintRegisters(t *testing.T) {
	mc := newMachine(t, nil)
	mc.State.Registers[0xA] = 0x42

	var out bytes.Buffer
	dbg := &debugger.Debugger{Output: &out}

	dbg.PrintRegisters(&mc.State)

	assert.Contains(t, out.String(), "VA:")
	assert.Contains(t, out.String(), "0x42")
	assert.Contains(t, out.String(), "running")
}

func TestPrintScreen(t *testing.T) {
	mc := newMachine(t, nil)
	mc.State.Display.Draw(0, 0, []byte{0x80})

	var out bytes.Buffer
	dbg := &debugger.Debugger{Output: &out}

	dbg.PrintScreen(&mc.State)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	assert.Len(t, lines, machine.SCREEN_HEIGHT)
	assert.Equal(t, "#"+strings.Repeat(".", machine.SCREEN_WIDTH-1), lines[0])
}

func TestPrintDisassembly(t *testing.T) {
	mc := newMachine(t, []byte{0x00, 0xE0, 0x12, 0x00})

	var out bytes.Buffer
	dbg := &debugger.Debugger{Output: &out}

	dbg.PrintDisassembly(&mc.State, 0x200, 2)

	assert.Contains(t, out.String(), "CLS")
	assert.Contains(t, out.String(), "JP $200")
}

func TestPrintSource(t *testing.T) {
	source := "start:\nCLS\nJP start\n"

	symtable := assembler.NewSymTable("")
	_, errs := assembler.AssembleChip8Source(strings.NewReader(source), symtable)
	assert.Empty(t, errs)

	var out bytes.Buffer
	dbg := &debugger.Debugger{
		Output:   &out,
		Source:   strings.NewReader(source),
		SymTable: symtable,
	}

	dbg.PrintSource(0x202, 1)
	assert.Contains(t, out.String(), "JP start")
	assert.Contains(t, out.String(), "0x202")

	addr, ok := dbg.LabelAddress("start")
	assert.True(t, ok)
	assert.Equal(t, uint16(0x200), addr)

	out.Reset()
	dbg.PrintSource(0x300, 1)
	assert.Contains(t, out.String(), "No instruction found")
}

func TestDump(t *testing.T) {
	rom := []byte{0x12, 0x34, 0x56}
	mc := newMachine(t, rom)

	var out bytes.Buffer
	assert.NoError(t, debugger.Dump(&out, &mc.State))

	image := out.Bytes()
	assert.Len(t, image, machine.MEMORY_SIZE)
	assert.Equal(t, rom, image[0x200:0x203])
	assert.Equal(t, machine.Font(), image[0x050:0x0A0])
}
