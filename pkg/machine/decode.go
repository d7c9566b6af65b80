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

type Operation uint8

const (
	OP_INVALID Operation = iota
	OP_CLS
	OP_RET
	OP_JP
	OP_CALL
	OP_SE_BYTE
	OP_SNE_BYTE
	OP_SE_REG
	OP_LD_BYTE
	OP_ADD_BYTE
	OP_LD_REG
	OP_OR
	OP_AND
	OP_XOR
	OP_ADD_REG
	OP_SUB
	OP_SHR
	OP_SUBN
	OP_SHL
	OP_SNE_REG
	OP_LD_I
	OP_JP_V0
	OP_RND
	OP_DRW
	OP_SKP
	OP_SKNP
	OP_LD_VX_DT
	OP_LD_VX_K
	OP_LD_DT_VX
	OP_LD_ST_VX
	OP_ADD_I
	OP_LD_F
	OP_LD_B
	OP_LD_MEM_VX
	OP_LD_VX_MEM

	operationCount
)

var operationNames = [operationCount]string{
	OP_INVALID:   "???",
	OP_CLS:       "CLS",
	OP_RET:       "RET",
	OP_JP:        "JP",
	OP_CALL:      "CALL",
	OP_SE_BYTE:   "SE",
	OP_SNE_BYTE:  "SNE",
	OP_SE_REG:    "SE",
	OP_LD_BYTE:   "LD",
	OP_ADD_BYTE:  "ADD",
	OP_LD_REG:    "LD",
	OP_OR:        "OR",
	OP_AND:       "AND",
	OP_XOR:       "XOR",
	OP_ADD_REG:   "ADD",
	OP_SUB:       "SUB",
	OP_SHR:       "SHR",
	OP_SUBN:      "SUBN",
	OP_SHL:       "SHL",
	OP_SNE_REG:   "SNE",
	OP_LD_I:      "LD",
	OP_JP_V0:     "JP",
	OP_RND:       "RND",
	OP_DRW:       "DRW",
	OP_SKP:       "SKP",
	OP_SKNP:      "SKNP",
	OP_LD_VX_DT:  "LD",
	OP_LD_VX_K:   "LD",
	OP_LD_DT_VX:  "LD",
	OP_LD_ST_VX:  "LD",
	OP_ADD_I:     "ADD",
	OP_LD_F:      "LD",
	OP_LD_B:      "LD",
	OP_LD_MEM_VX: "LD",
	OP_LD_VX_MEM: "LD",
}

func (op Operation) String() string {
	if op >= operationCount {
		return operationNames[OP_INVALID]
	}

	return operationNames[op]
}

// Instruction is a decoded instruction word with every operand field
// extracted. Which fields are meaningful depends on Op.
type Instruction struct {
	Word uint16
	Op   Operation
	X    uint8
	Y    uint8
	N    uint8
	NN   uint8
	NNN  uint16
}

// Decode splits word into its operand fields and identifies the operation.
// Words matching no known pattern decode to OP_INVALID.
func Decode(word uint16) Instruction {
	in := Instruction{
		Word: word,
		X:    uint8(word>>8) & 0xF,
		Y:    uint8(word>>4) & 0xF,
		N:    uint8(word) & 0xF,
		NN:   uint8(word),
		NNN:  word & 0x0FFF,
	}

	switch word >> 12 {
	// 00E0 CLS | 00EE RET
	case 0x0:
		switch word {
		case 0x00E0:
			in.Op = OP_CLS
		case 0x00EE:
			in.Op = OP_RET
		}

	case 0x1:
		in.Op = OP_JP
	case 0x2:
		in.Op = OP_CALL
	case 0x3:
		in.Op = OP_SE_BYTE
	case 0x4:
		in.Op = OP_SNE_BYTE
	case 0x5:
		if in.N == 0x0 {
			in.Op = OP_SE_REG
		}
	case 0x6:
		in.Op = OP_LD_BYTE
	case 0x7:
		in.Op = OP_ADD_BYTE

	// 8xy0 - 8xy7, 8xyE
	case 0x8:
		switch in.N {
		case 0x0:
			in.Op = OP_LD_REG
		case 0x1:
			in.Op = OP_OR
		case 0x2:
			in.Op = OP_AND
		case 0x3:
			in.Op = OP_XOR
		case 0x4:
			in.Op = OP_ADD_REG
		case 0x5:
			in.Op = OP_SUB
		case 0x6:
			in.Op = OP_SHR
		case 0x7:
			in.Op = OP_SUBN
		case 0xE:
			in.Op = OP_SHL
		}

	case 0x9:
		if in.N == 0x0 {
			in.Op = OP_SNE_REG
		}
	case 0xA:
		in.Op = OP_LD_I
	case 0xB:
		in.Op = OP_JP_V0
	case 0xC:
		in.Op = OP_RND
	case 0xD:
		in.Op = OP_DRW

	// Ex9E SKP | ExA1 SKNP
	case 0xE:
		switch in.NN {
		case 0x9E:
			in.Op = OP_SKP
		case 0xA1:
			in.Op = OP_SKNP
		}

	// Fx07 - Fx65
	case 0xF:
		switch in.NN {
		case 0x07:
			in.Op = OP_LD_VX_DT
		case 0x0A:
			in.Op = OP_LD_VX_K
		case 0x15:
			in.Op = OP_LD_DT_VX
		case 0x18:
			in.Op = OP_LD_ST_VX
		case 0x1E:
			in.Op = OP_ADD_I
		case 0x29:
			in.Op = OP_LD_F
		case 0x33:
			in.Op = OP_LD_B
		case 0x55:
			in.Op = OP_LD_MEM_VX
		case 0x65:
			in.Op = OP_LD_VX_MEM
		}
	}

	return in
}

// fetch reads the big-endian word at the program counter and advances it.
func (mc *Machine) fetch() (uint16, error) {
	if err := mc.State.Memory.Span(mc.State.Program, INSTRUCTION_SIZE); err != nil {
		return 0, err
	}

	high := mc.read(mc.State.Program)
	low := mc.read(mc.State.Program + 1)

	mc.State.Program += INSTRUCTION_SIZE
	return uint16(high)<<8 | uint16(low), nil
}
