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

// Package disasm renders instruction words as assembler text that
// pkg/assembler accepts back.
package disasm

import (
	"fmt"
	"strings"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

type Line struct {
	Address uint16
	Word    uint16
	Text    string
}

func (l Line) String() string {
	return fmt.Sprintf("%03X: %04X  %s", l.Address, l.Word, l.Text)
}

// mnemonic looks the word up in the shared instruction table, falling back
// to the machine's own operation name.
func mnemonic(word uint16, in machine.Instruction) string {
	for _, op := range chip8.Opcodes[int(word>>12)] {
		if op.Instruction != nil && op.Info.Mask&word == op.Info.Value {
			return strings.ToUpper(op.Instruction.Name)
		}
	}

	return in.Op.String()
}

func Disassemble(word uint16) string {
	in := machine.Decode(word)

	if in.Op == machine.OP_INVALID {
		return fmt.Sprintf("DW $%04X", word)
	}

	name := mnemonic(word, in)

	if params := operands(in); params != "" {
		return name + " " + params
	}

	return name
}

func operands(in machine.Instruction) string {
	switch in.Op {
	case machine.OP_CLS, machine.OP_RET:
		return ""

	case machine.OP_JP, machine.OP_CALL:
		return fmt.Sprintf("$%03X", in.NNN)
	case machine.OP_JP_V0:
		return fmt.Sprintf("V0, $%03X", in.NNN)
	case machine.OP_LD_I:
		return fmt.Sprintf("I, $%03X", in.NNN)

	case machine.OP_SE_BYTE, machine.OP_SNE_BYTE, machine.OP_LD_BYTE,
		machine.OP_ADD_BYTE, machine.OP_RND:
		return fmt.Sprintf("V%X, $%02X", in.X, in.NN)

	case machine.OP_SE_REG, machine.OP_SNE_REG, machine.OP_LD_REG,
		machine.OP_OR, machine.OP_AND, machine.OP_XOR, machine.OP_ADD_REG,
		machine.OP_SUB, machine.OP_SHR, machine.OP_SUBN, machine.OP_SHL:
		return fmt.Sprintf("V%X, V%X", in.X, in.Y)

	case machine.OP_DRW:
		return fmt.Sprintf("V%X, V%X, $%X", in.X, in.Y, in.N)

	case machine.OP_SKP, machine.OP_SKNP:
		return fmt.Sprintf("V%X", in.X)

	case machine.OP_LD_VX_DT:
		return fmt.Sprintf("V%X, DT", in.X)
	case machine.OP_LD_VX_K:
		return fmt.Sprintf("V%X, K", in.X)
	case machine.OP_LD_DT_VX:
		return fmt.Sprintf("DT, V%X", in.X)
	case machine.OP_LD_ST_VX:
		return fmt.Sprintf("ST, V%X", in.X)
	case machine.OP_ADD_I:
		return fmt.Sprintf("I, V%X", in.X)
	case machine.OP_LD_F:
		return fmt.Sprintf("F, V%X", in.X)
	case machine.OP_LD_B:
		return fmt.Sprintf("B, V%X", in.X)
	case machine.OP_LD_MEM_VX:
		return fmt.Sprintf("[I], V%X", in.X)
	case machine.OP_LD_VX_MEM:
		return fmt.Sprintf("V%X, [I]", in.X)
	}

	return ""
}

// Listing disassembles count words of mem starting at addr. It stops early
// at the end of mem.
func Listing(mem []byte, addr uint16, count int) []Line {
	lines := make([]Line, 0, count)

	for i := 0; i < count && int(addr)+1 < len(mem); i++ {
		word := uint16(mem[addr])<<8 | uint16(mem[addr+1])

		lines = append(lines, Line{
			Address: addr,
			Word:    word,
			Text:    Disassemble(word),
		})

		addr += machine.INSTRUCTION_SIZE
	}

	return lines
}
