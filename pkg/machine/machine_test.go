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

package machine_test

import (
	"testing"

	"github.com/lassandro/gochip8/pkg/machine"
)

type testMachineState struct {
	Registers [16]uint8
	Index     uint16
	Program   uint16
	Delay     uint8
	Sound     uint8
	Stack     []uint16
	Keys      machine.Keypad
	Memory    map[uint16]byte
	Status    machine.Status
}

type testCase struct {
	Name   string
	Code   []uint16
	Steps  uint
	Quirks machine.Quirks
	Input  testMachineState
	Output testMachineState
}

func testMachineSuccess(t *testing.T, test *testCase) {
	var mc machine.Machine

	mc.State.Reset()
	mc.Quirks = test.Quirks
	mc.State.Registers = test.Input.Registers
	mc.State.Index = test.Input.Index
	mc.State.Delay = test.Input.Delay
	mc.State.Sound = test.Input.Sound
	mc.SetKeys(test.Input.Keys)

	if test.Input.Program != 0 {
		mc.State.Program = test.Input.Program
	}

	for _, addr := range test.Input.Stack {
		if err := mc.State.Stack.Push(addr); err != nil {
			t.Fatal(err)
		}
	}

	for i, word := range test.Code {
		addr := mc.State.Program + uint16(i*2)
		mc.State.Memory[addr] = byte(word >> 8)
		mc.State.Memory[addr+1] = byte(word)
	}

	for addr, value := range test.Input.Memory {
		mc.State.Memory[addr] = value
	}

	expected := mc.State.Memory

	for addr, value := range test.Output.Memory {
		expected[addr] = value
	}

	if test.Steps == 0 {
		test.Steps = 1
	}

	for i := uint(0); i < test.Steps; i++ {
		if err := mc.Step(); err != nil {
			t.Fatalf("Unexpected step error\nhave:%v", err)
		}
	}

	for i := 0; i < 16; i++ {
		want := test.Output.Registers[i]
		have := mc.State.Registers[i]
		if have != want {
			t.Errorf(
				"Register mismatch"+
					"\nwant:%#02x (test.Output.Registers[%#x])\nhave:%#02x",
				want,
				i,
				have,
			)
		}
	}

	if mc.State.Program != test.Output.Program {
		t.Errorf(
			"Program counter mismatch"+
				"\nwant:%#04x (test.Output.Program)\nhave:%#04x",
			test.Output.Program,
			mc.State.Program,
		)
	}

	if mc.State.Index != test.Output.Index {
		t.Errorf(
			"Index register mismatch"+
				"\nwant:%#04x (test.Output.Index)\nhave:%#04x",
			test.Output.Index,
			mc.State.Index,
		)
	}

	if mc.State.Delay != test.Output.Delay {
		t.Errorf(
			"Delay timer mismatch"+
				"\nwant:%d (test.Output.Delay)\nhave:%d",
			test.Output.Delay,
			mc.State.Delay,
		)
	}

	if mc.State.Sound != test.Output.Sound {
		t.Errorf(
			"Sound timer mismatch"+
				"\nwant:%d (test.Output.Sound)\nhave:%d",
			test.Output.Sound,
			mc.State.Sound,
		)
	}

	if mc.State.Status != test.Output.Status {
		t.Errorf(
			"Status mismatch"+
				"\nwant:%s (test.Output.Status)\nhave:%s",
			test.Output.Status,
			mc.State.Status,
		)
	}

	if have, want := mc.State.Stack.Len(), len(test.Output.Stack); have != want {
		t.Errorf(
			"Stack depth mismatch"+
				"\nwant:%d (len(test.Output.Stack))\nhave:%d",
			want,
			have,
		)
	} else {
		for i, want := range test.Output.Stack {
			if have := mc.State.Stack.Addresses[i]; have != want {
				t.Errorf(
					"Stack entry mismatch"+
						"\nwant:%#04x (test.Output.Stack[%d])\nhave:%#04x",
					want,
					i,
					have,
				)
			}
		}
	}

	for addr, want := range expected {
		if have := mc.State.Memory[addr]; have != want {
			t.Fatalf(
				"Memory value mismatch"+
					"\nwant:%#02x (memory[%#04x])\nhave:%#02x",
				want,
				addr,
				have,
			)
		}
	}
}

func runCases(t *testing.T, cases []testCase) {
	for i := range cases {
		test := &cases[i]
		t.Run(test.Name, func(t *testing.T) {
			testMachineSuccess(t, test)
		})
	}
}

func TestFlow(t *testing.T) {
	runCases(t, []testCase{
		{
			Name:   "RET",
			Code:   []uint16{0x00EE},
			Input:  testMachineState{Stack: []uint16{0x0300}},
			Output: testMachineState{Program: 0x0300},
		},
		{
			Name:   "JP",
			Code:   []uint16{0x1ABC},
			Output: testMachineState{Program: 0x0ABC},
		},
		{
			Name:   "CALL",
			Code:   []uint16{0x2400},
			Output: testMachineState{Program: 0x0400, Stack: []uint16{0x0202}},
		},
		{
			Name:   "CALL RET",
			Code:   []uint16{0x2206, 0x0000, 0x0000, 0x00EE},
			Steps:  2,
			Output: testMachineState{Program: 0x0202},
		},
		{
			Name:   "JP V0",
			Code:   []uint16{0xB300},
			Input:  testMachineState{Registers: [16]uint8{0x0: 0x10}},
			Output: testMachineState{Program: 0x0310, Registers: [16]uint8{0x0: 0x10}},
		},
		{
			Name:   "JP Vx (quirk)",
			Code:   []uint16{0xB230},
			Quirks: machine.Quirks{JumpUsesVX: true},
			Input:  testMachineState{Registers: [16]uint8{0x0: 0x10, 0x2: 0x05}},
			Output: testMachineState{
				Program:   0x0235,
				Registers: [16]uint8{0x0: 0x10, 0x2: 0x05},
			},
		},
	})
}

func TestSkip(t *testing.T) {
	runCases(t, []testCase{
		{
			Name:   "SE byte taken",
			Code:   []uint16{0x3342},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0x42}},
			Output: testMachineState{Program: 0x0204, Registers: [16]uint8{0x3: 0x42}},
		},
		{
			Name:   "SE byte not taken",
			Code:   []uint16{0x3342},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0x41}},
			Output: testMachineState{Program: 0x0202, Registers: [16]uint8{0x3: 0x41}},
		},
		{
			Name:   "SNE byte taken",
			Code:   []uint16{0x4342},
			Input:  testMachineState{Registers: [16]uint8{0x3: 0x41}},
			Output: testMachineState{Program: 0x0204, Registers: [16]uint8{0x3: 0x41}},
		},
		{
			Name:   "SE reg taken",
			Code:   []uint16{0x5120},
			Input:  testMachineState{Registers: [16]uint8{0x1: 7, 0x2: 7}},
			Output: testMachineState{Program: 0x0204, Registers: [16]uint8{0x1: 7, 0x2: 7}},
		},
		{
			Name:   "SNE reg taken",
			Code:   []uint16{0x9120},
			Input:  testMachineState{Registers: [16]uint8{0x1: 7, 0x2: 8}},
			Output: testMachineState{Program: 0x0204, Registers: [16]uint8{0x1: 7, 0x2: 8}},
		},
		{
			Name:   "SNE reg not taken",
			Code:   []uint16{0x9120},
			Input:  testMachineState{Registers: [16]uint8{0x1: 7, 0x2: 7}},
			Output: testMachineState{Program: 0x0202, Registers: [16]uint8{0x1: 7, 0x2: 7}},
		},
		{
			Name: "SKP down",
			Code: []uint16{0xE19E},
			Input: testMachineState{
				Registers: [16]uint8{0x1: 0x5},
				Keys:      machine.Keypad(0).Press(0x5),
			},
			Output: testMachineState{Program: 0x0204, Registers: [16]uint8{0x1: 0x5}},
		},
		{
			Name:   "SKP up",
			Code:   []uint16{0xE19E},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x5}},
			Output: testMachineState{Program: 0x0202, Registers: [16]uint8{0x1: 0x5}},
		},
		{
			Name:   "SKNP up",
			Code:   []uint16{0xE1A1},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0x5}},
			Output: testMachineState{Program: 0x0204, Registers: [16]uint8{0x1: 0x5}},
		},
		{
			Name: "SKNP down",
			Code: []uint16{0xE1A1},
			Input: testMachineState{
				Registers: [16]uint8{0x1: 0x5},
				Keys:      machine.Keypad(0).Press(0x5),
			},
			Output: testMachineState{Program: 0x0202, Registers: [16]uint8{0x1: 0x5}},
		},
	})
}

func TestArithmetic(t *testing.T) {
	runCases(t, []testCase{
		{
			Name:   "LD byte",
			Code:   []uint16{0x6A05},
			Output: testMachineState{Program: 0x0202, Registers: [16]uint8{0xA: 0x05}},
		},
		{
			Name:  "ADD byte wraps without flag",
			Code:  []uint16{0x7102},
			Input: testMachineState{Registers: [16]uint8{0x1: 0xFF, 0xF: 0x55}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 0x01, 0xF: 0x55},
			},
		},
		{
			Name:   "LD reg",
			Code:   []uint16{0x8120},
			Input:  testMachineState{Registers: [16]uint8{0x2: 9}},
			Output: testMachineState{Program: 0x0202, Registers: [16]uint8{0x1: 9, 0x2: 9}},
		},
		{
			Name:  "OR",
			Code:  []uint16{0x8121},
			Input: testMachineState{Registers: [16]uint8{0x1: 0b1100, 0x2: 0b1010}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 0b1110, 0x2: 0b1010},
			},
		},
		{
			Name:  "AND",
			Code:  []uint16{0x8122},
			Input: testMachineState{Registers: [16]uint8{0x1: 0b1100, 0x2: 0b1010}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 0b1000, 0x2: 0b1010},
			},
		},
		{
			Name:  "XOR",
			Code:  []uint16{0x8123},
			Input: testMachineState{Registers: [16]uint8{0x1: 0b1100, 0x2: 0b1010, 0xF: 1}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 0b0110, 0x2: 0b1010, 0xF: 1},
			},
		},
		{
			Name:   "XOR resets flag (quirk)",
			Code:   []uint16{0x8123},
			Quirks: machine.Quirks{LogicResetsFlag: true},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0b1100, 0x2: 0b1010, 0xF: 1}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 0b0110, 0x2: 0b1010},
			},
		},
		{
			Name:  "ADD carry",
			Code:  []uint16{0x8124},
			Input: testMachineState{Registers: [16]uint8{0x1: 250, 0x2: 10}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 4, 0x2: 10, 0xF: 1},
			},
		},
		{
			Name:  "ADD no carry",
			Code:  []uint16{0x8124},
			Input: testMachineState{Registers: [16]uint8{0x1: 5, 0x2: 10, 0xF: 1}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 15, 0x2: 10, 0xF: 0},
			},
		},
		{
			Name:  "ADD into VF keeps flag",
			Code:  []uint16{0x8F14},
			Input: testMachineState{Registers: [16]uint8{0x1: 10, 0xF: 250}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 10, 0xF: 1},
			},
		},
		{
			Name:  "SUB no borrow",
			Code:  []uint16{0x8125},
			Input: testMachineState{Registers: [16]uint8{0x1: 10, 0x2: 3}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 7, 0x2: 3, 0xF: 1},
			},
		},
		{
			Name:  "SUB borrow",
			Code:  []uint16{0x8125},
			Input: testMachineState{Registers: [16]uint8{0x1: 3, 0x2: 10, 0xF: 1}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 249, 0x2: 10},
			},
		},
		{
			Name:  "SUB equal",
			Code:  []uint16{0x8125},
			Input: testMachineState{Registers: [16]uint8{0x1: 5, 0x2: 5, 0xF: 1}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x2: 5},
			},
		},
		{
			Name:  "SHR odd",
			Code:  []uint16{0x8106},
			Input: testMachineState{Registers: [16]uint8{0x1: 0b10110101}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 0b01011010, 0xF: 1},
			},
		},
		{
			Name:  "SHR even",
			Code:  []uint16{0x8106},
			Input: testMachineState{Registers: [16]uint8{0x1: 0b10110100, 0xF: 1}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 0b01011010},
			},
		},
		{
			Name:   "SHR Vy (quirk)",
			Code:   []uint16{0x8126},
			Quirks: machine.Quirks{ShiftUsesVY: true},
			Input:  testMachineState{Registers: [16]uint8{0x1: 0xF0, 0x2: 0b11}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 0b1, 0x2: 0b11, 0xF: 1},
			},
		},
		{
			Name:  "SUBN no borrow",
			Code:  []uint16{0x8127},
			Input: testMachineState{Registers: [16]uint8{0x1: 3, 0x2: 10}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 7, 0x2: 10, 0xF: 1},
			},
		},
		{
			Name:  "SUBN borrow",
			Code:  []uint16{0x8127},
			Input: testMachineState{Registers: [16]uint8{0x1: 10, 0x2: 3}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 249, 0x2: 3},
			},
		},
		{
			Name:  "SHL",
			Code:  []uint16{0x810E},
			Input: testMachineState{Registers: [16]uint8{0x1: 0b10000001}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 0b00000010, 0xF: 1},
			},
		},
		{
			Name:  "SHL no carry",
			Code:  []uint16{0x810E},
			Input: testMachineState{Registers: [16]uint8{0x1: 0b01000001, 0xF: 1}},
			Output: testMachineState{
				Program:   0x0202,
				Registers: [16]uint8{0x1: 0b10000010},
			},
		},
		{
			Name:  "RND masked to zero",
			Code:  []uint16{0xC100},
			Input: testMachineState{Registers: [16]uint8{0x1: 0xFF}},
			Output: testMachineState{
				Program: 0x0202,
			},
		},
	})
}

func TestIndexAndTimers(t *testing.T) {
	runCases(t, []testCase{
		{
			Name:   "LD I",
			Code:   []uint16{0xA123},
			Output: testMachineState{Program: 0x0202, Index: 0x0123},
		},
		{
			Name:  "ADD I",
			Code:  []uint16{0xF11E},
			Input: testMachineState{Index: 0x0100, Registers: [16]uint8{0x1: 0x10}},
			Output: testMachineState{
				Program:   0x0202,
				Index:     0x0110,
				Registers: [16]uint8{0x1: 0x10},
			},
		},
		{
			Name:  "ADD I wraps at 16 bits",
			Code:  []uint16{0xF11E},
			Input: testMachineState{Index: 0xFFFF, Registers: [16]uint8{0x1: 0x02}},
			Output: testMachineState{
				Program:   0x0202,
				Index:     0x0001,
				Registers: [16]uint8{0x1: 0x02},
			},
		},
		{
			Name:  "LD F",
			Code:  []uint16{0xFA29},
			Input: testMachineState{Registers: [16]uint8{0xA: 0x5}},
			Output: testMachineState{
				Program:   0x0202,
				Index:     0x0050 + 25,
				Registers: [16]uint8{0xA: 0x5},
			},
		},
		{
			Name:  "LD F uses the low digit",
			Code:  []uint16{0xFA29},
			Input: testMachineState{Registers: [16]uint8{0xA: 0x1F}},
			Output: testMachineState{
				Program:   0x0202,
				Index:     0x0050 + 75,
				Registers: [16]uint8{0xA: 0x1F},
			},
		},
		{
			Name:  "LD Vx DT",
			Code:  []uint16{0xF107},
			Input: testMachineState{Delay: 0x33},
			Output: testMachineState{
				Program:   0x0202,
				Delay:     0x33,
				Registers: [16]uint8{0x1: 0x33},
			},
		},
		{
			Name:  "LD DT Vx",
			Code:  []uint16{0xF115},
			Input: testMachineState{Registers: [16]uint8{0x1: 9}},
			Output: testMachineState{
				Program:   0x0202,
				Delay:     9,
				Registers: [16]uint8{0x1: 9},
			},
		},
		{
			Name:  "LD ST Vx",
			Code:  []uint16{0xF118},
			Input: testMachineState{Registers: [16]uint8{0x1: 9}},
			Output: testMachineState{
				Program:   0x0202,
				Sound:     9,
				Registers: [16]uint8{0x1: 9},
			},
		},
		{
			Name: "LD Vx K suspends",
			Code: []uint16{0xF30A},
			Output: testMachineState{
				Program: 0x0202,
				Status:  machine.STATUS_AWAITING_KEY,
			},
		},
		{
			Name:  "End to end font lookup",
			Code:  []uint16{0x6A05, 0xA200, 0xFA29},
			Steps: 3,
			Output: testMachineState{
				Program:   0x0206,
				Index:     0x0050 + 25,
				Registers: [16]uint8{0xA: 5},
			},
		},
		{
			Name:   "Unrecognized opcode is ignored",
			Code:   []uint16{0x5121},
			Output: testMachineState{Program: 0x0202},
		},
	})
}

func TestMemoryTransfer(t *testing.T) {
	runCases(t, []testCase{
		{
			Name:  "LD B",
			Code:  []uint16{0xF133},
			Input: testMachineState{Index: 0x0300, Registers: [16]uint8{0x1: 157}},
			Output: testMachineState{
				Program:   0x0202,
				Index:     0x0300,
				Registers: [16]uint8{0x1: 157},
				Memory:    map[uint16]byte{0x300: 1, 0x301: 5, 0x302: 7},
			},
		},
		{
			Name: "LD [I] Vx",
			Code: []uint16{0xF255},
			Input: testMachineState{
				Index:     0x0300,
				Registers: [16]uint8{0x0: 1, 0x1: 2, 0x2: 3, 0x3: 4},
			},
			Output: testMachineState{
				Program:   0x0202,
				Index:     0x0300,
				Registers: [16]uint8{0x0: 1, 0x1: 2, 0x2: 3, 0x3: 4},
				Memory:    map[uint16]byte{0x300: 1, 0x301: 2, 0x302: 3},
			},
		},
		{
			Name:   "LD [I] Vx increments I (quirk)",
			Code:   []uint16{0xF255},
			Quirks: machine.Quirks{MemoryIncrementsIndex: true},
			Input: testMachineState{
				Index:     0x0300,
				Registers: [16]uint8{0x0: 1, 0x1: 2, 0x2: 3},
			},
			Output: testMachineState{
				Program:   0x0202,
				Index:     0x0303,
				Registers: [16]uint8{0x0: 1, 0x1: 2, 0x2: 3},
				Memory:    map[uint16]byte{0x300: 1, 0x301: 2, 0x302: 3},
			},
		},
		{
			Name: "LD Vx [I]",
			Code: []uint16{0xF265},
			Input: testMachineState{
				Index:     0x0300,
				Registers: [16]uint8{0x3: 0x44},
				Memory:    map[uint16]byte{0x300: 9, 0x301: 8, 0x302: 7, 0x303: 6},
			},
			Output: testMachineState{
				Program:   0x0202,
				Index:     0x0300,
				Registers: [16]uint8{0x0: 9, 0x1: 8, 0x2: 7, 0x3: 0x44},
				Memory:    map[uint16]byte{0x300: 9, 0x301: 8, 0x302: 7, 0x303: 6},
			},
		},
	})
}
