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
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

type operation func(mc *Machine, in Instruction) error

var operations = [operationCount]operation{
	OP_INVALID:   opInvalid,
	OP_CLS:       opCls,
	OP_RET:       opRet,
	OP_JP:        opJp,
	OP_CALL:      opCall,
	OP_SE_BYTE:   opSeByte,
	OP_SNE_BYTE:  opSneByte,
	OP_SE_REG:    opSeReg,
	OP_LD_BYTE:   opLdByte,
	OP_ADD_BYTE:  opAddByte,
	OP_LD_REG:    opLdReg,
	OP_OR:        opOr,
	OP_AND:       opAnd,
	OP_XOR:       opXor,
	OP_ADD_REG:   opAddReg,
	OP_SUB:       opSub,
	OP_SHR:       opShr,
	OP_SUBN:      opSubn,
	OP_SHL:       opShl,
	OP_SNE_REG:   opSneReg,
	OP_LD_I:      opLdI,
	OP_JP_V0:     opJpV0,
	OP_RND:       opRnd,
	OP_DRW:       opDrw,
	OP_SKP:       opSkp,
	OP_SKNP:      opSknp,
	OP_LD_VX_DT:  opLdVxDt,
	OP_LD_VX_K:   opLdVxK,
	OP_LD_DT_VX:  opLdDtVx,
	OP_LD_ST_VX:  opLdStVx,
	OP_ADD_I:     opAddI,
	OP_LD_F:      opLdF,
	OP_LD_B:      opLdB,
	OP_LD_MEM_VX: opLdMemVx,
	OP_LD_VX_MEM: opLdVxMem,
}

func (mc *Machine) skip(cond bool) {
	if cond {
		mc.State.Program += INSTRUCTION_SIZE
	}
}

// setWithFlag stores result in Vx and then flag in VF, so VF wins when x is F.
func (mc *Machine) setWithFlag(x, result, flag uint8) {
	mc.State.Registers[x] = result
	mc.State.Registers[REG_FLAG] = flag
}

func bit(cond bool) uint8 {
	if cond {
		return 1
	}

	return 0
}

// ???? |unrecognized                 | No-op unless strict
func opInvalid(mc *Machine, in Instruction) error {
	if mc.Strict {
		return fmt.Errorf("%w: %#04x", ErrUnrecognizedOpcode, in.Word)
	}

	if mc.Logger != nil {
		mc.Logger.Warn("Ignoring unrecognized opcode",
			log.Hex("pc", mc.State.Program-INSTRUCTION_SIZE),
			log.Hex("opcode", in.Word))
	}

	return nil
}

// CLS  |0000|0000|1110|0000|
func opCls(mc *Machine, _ Instruction) error {
	mc.State.Display.Clear()
	return nil
}

// RET  |0000|0000|1110|1110|
func opRet(mc *Machine, _ Instruction) error {
	addr, err := mc.State.Stack.Pop()

	if err != nil {
		return err
	}

	mc.State.Program = addr
	return nil
}

// JP   |0001|nnn           |
func opJp(mc *Machine, in Instruction) error {
	mc.State.Program = in.NNN
	return nil
}

// CALL |0010|nnn           |
func opCall(mc *Machine, in Instruction) error {
	if err := mc.State.Stack.Push(mc.State.Program); err != nil {
		return err
	}

	mc.State.Program = in.NNN
	return nil
}

// SE   |0011|x   |nn       |
func opSeByte(mc *Machine, in Instruction) error {
	mc.skip(mc.State.Registers[in.X] == in.NN)
	return nil
}

// SNE  |0100|x   |nn       |
func opSneByte(mc *Machine, in Instruction) error {
	mc.skip(mc.State.Registers[in.X] != in.NN)
	return nil
}

// SE   |0101|x   |y   |0000|
func opSeReg(mc *Machine, in Instruction) error {
	mc.skip(mc.State.Registers[in.X] == mc.State.Registers[in.Y])
	return nil
}

// LD   |0110|x   |nn       |
func opLdByte(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X] = in.NN
	return nil
}

// ADD  |0111|x   |nn       | No flag
func opAddByte(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X] += in.NN
	return nil
}

// LD   |1000|x   |y   |0000|
func opLdReg(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X] = mc.State.Registers[in.Y]
	return nil
}

// OR   |1000|x   |y   |0001|
func opOr(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X] |= mc.State.Registers[in.Y]
	mc.logicFlag()
	return nil
}

// AND  |1000|x   |y   |0010|
func opAnd(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X] &= mc.State.Registers[in.Y]
	mc.logicFlag()
	return nil
}

// XOR  |1000|x   |y   |0011|
func opXor(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X] ^= mc.State.Registers[in.Y]
	mc.logicFlag()
	return nil
}

func (mc *Machine) logicFlag() {
	if mc.Quirks.LogicResetsFlag {
		mc.State.Registers[REG_FLAG] = 0
	}
}

// ADD  |1000|x   |y   |0100| VF = carry
func opAddReg(mc *Machine, in Instruction) error {
	sum := uint16(mc.State.Registers[in.X]) + uint16(mc.State.Registers[in.Y])
	mc.setWithFlag(in.X, uint8(sum), bit(sum > 0xFF))
	return nil
}

// SUB  |1000|x   |y   |0101| VF = not borrow
func opSub(mc *Machine, in Instruction) error {
	vx, vy := mc.State.Registers[in.X], mc.State.Registers[in.Y]
	mc.setWithFlag(in.X, vx-vy, bit(vx > vy))
	return nil
}

// SHR  |1000|x   |y   |0110| VF = bit shifted out
func opShr(mc *Machine, in Instruction) error {
	src := mc.State.Registers[in.X]

	if mc.Quirks.ShiftUsesVY {
		src = mc.State.Registers[in.Y]
	}

	mc.setWithFlag(in.X, src>>1, src&0x01)
	return nil
}

// SUBN |1000|x   |y   |0111| VF = not borrow
func opSubn(mc *Machine, in Instruction) error {
	vx, vy := mc.State.Registers[in.X], mc.State.Registers[in.Y]
	mc.setWithFlag(in.X, vy-vx, bit(vy > vx))
	return nil
}

// SHL  |1000|x   |y   |1110| VF = bit shifted out
func opShl(mc *Machine, in Instruction) error {
	src := mc.State.Registers[in.X]

	if mc.Quirks.ShiftUsesVY {
		src = mc.State.Registers[in.Y]
	}

	mc.setWithFlag(in.X, src<<1, src>>7)
	return nil
}

// SNE  |1001|x   |y   |0000|
func opSneReg(mc *Machine, in Instruction) error {
	mc.skip(mc.State.Registers[in.X] != mc.State.Registers[in.Y])
	return nil
}

// LD   |1010|nnn           | I = nnn
func opLdI(mc *Machine, in Instruction) error {
	mc.State.Index = in.NNN
	return nil
}

// JP   |1011|nnn           | PC = nnn + V0
func opJpV0(mc *Machine, in Instruction) error {
	offset := mc.State.Registers[0x0]

	if mc.Quirks.JumpUsesVX {
		offset = mc.State.Registers[in.X]
	}

	mc.State.Program = in.NNN + uint16(offset)
	return nil
}

// RND  |1100|x   |nn       |
func opRnd(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X] = mc.randomByte() & in.NN
	return nil
}

// DRW  |1101|x   |y   |n   | VF = collision
func opDrw(mc *Machine, in Instruction) error {
	if err := mc.State.Memory.Span(mc.State.Index, int(in.N)); err != nil {
		return err
	}

	sprite := make([]byte, in.N)

	for i := range sprite {
		sprite[i] = mc.read(mc.State.Index + uint16(i))
	}

	collision := mc.State.Display.Draw(
		mc.State.Registers[in.X], mc.State.Registers[in.Y], sprite,
	)

	mc.State.Registers[REG_FLAG] = bit(collision)
	return nil
}

// SKP  |1110|x   |1001|1110|
func opSkp(mc *Machine, in Instruction) error {
	mc.skip(mc.Keys.Down(mc.State.Registers[in.X]))
	return nil
}

// SKNP |1110|x   |1010|0001|
func opSknp(mc *Machine, in Instruction) error {
	mc.skip(!mc.Keys.Down(mc.State.Registers[in.X]))
	return nil
}

// LD   |1111|x   |0000|0111| Vx = DT
func opLdVxDt(mc *Machine, in Instruction) error {
	mc.State.Registers[in.X] = mc.State.Delay
	return nil
}

// LD   |1111|x   |0000|1010| Vx = K, suspends until SetKeys reports a press
func opLdVxK(mc *Machine, in Instruction) error {
	mc.State.Status = STATUS_AWAITING_KEY
	mc.State.KeyTarget = in.X
	return nil
}

// LD   |1111|x   |0001|0101| DT = Vx
func opLdDtVx(mc *Machine, in Instruction) error {
	mc.State.Delay = mc.State.Registers[in.X]
	return nil
}

// LD   |1111|x   |0001|1000| ST = Vx
func opLdStVx(mc *Machine, in Instruction) error {
	mc.State.Sound = mc.State.Registers[in.X]
	return nil
}

// ADD  |1111|x   |0001|1110| I = I + Vx
func opAddI(mc *Machine, in Instruction) error {
	mc.State.Index += uint16(mc.State.Registers[in.X])
	return nil
}

// LD   |1111|x   |0010|1001| I = glyph for digit Vx
func opLdF(mc *Machine, in Instruction) error {
	digit := uint16(mc.State.Registers[in.X] & 0xF)
	mc.State.Index = MEMSPACE_FONT + GLYPH_SIZE*digit
	return nil
}

// LD   |1111|x   |0011|0011| [I..I+2] = BCD(Vx)
func opLdB(mc *Machine, in Instruction) error {
	if err := mc.State.Memory.Span(mc.State.Index, 3); err != nil {
		return err
	}

	value := mc.State.Registers[in.X]

	mc.write(mc.State.Index, value/100)
	mc.write(mc.State.Index+1, (value/10)%10)
	mc.write(mc.State.Index+2, value%10)
	return nil
}

// LD   |1111|x   |0101|0101| [I..I+x] = V0..Vx
func opLdMemVx(mc *Machine, in Instruction) error {
	count := int(in.X) + 1

	if err := mc.State.Memory.Span(mc.State.Index, count); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		mc.write(mc.State.Index+uint16(i), mc.State.Registers[i])
	}

	mc.advanceIndex(count)
	return nil
}

// LD   |1111|x   |0110|0101| V0..Vx = [I..I+x]
func opLdVxMem(mc *Machine, in Instruction) error {
	count := int(in.X) + 1

	if err := mc.State.Memory.Span(mc.State.Index, count); err != nil {
		return err
	}

	for i := 0; i < count; i++ {
		mc.State.Registers[i] = mc.read(mc.State.Index + uint16(i))
	}

	mc.advanceIndex(count)
	return nil
}

func (mc *Machine) advanceIndex(count int) {
	if mc.Quirks.MemoryIncrementsIndex {
		mc.State.Index += uint16(count)
	}
}
