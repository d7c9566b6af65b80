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

package assembler

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/gochip8/pkg/encoding"
	"github.com/lassandro/gochip8/pkg/machine"
)

type labelRef struct {
	Label    string
	Addr     uint16
	Mask     uint16
	Position Cursor
}

type assembler struct {
	result    []byte
	program   uint32
	end       uint32
	labels    map[string]uint16
	labelRefs []labelRef
	errs      []error
	overflow  bool
}

func parseDirective(ident string) DirectiveType {
	return directives[strings.ToUpper(ident)]
}

func parseInstruction(ident string) InstructionType {
	return instructions[strings.ToUpper(ident)]
}

func parseRegister(ident string) (uint16, bool) {
	if len(ident) != 2 || (ident[0] != 'V' && ident[0] != 'v') {
		return 0, false
	}

	reg, err := strconv.ParseUint(ident[1:], 16, 4)

	if err != nil {
		return 0, false
	}

	return uint16(reg), true
}

func looksLikeRegister(ident string) bool {
	return len(ident) == 2 && (ident[0] == 'V' || ident[0] == 'v')
}

func parseLiteral(token *Token, bits LiteralType) (uint16, error) {
	result, err := encoding.DecodeLiteral(token.Value)

	if err != nil {
		return 0, &InvalidLiteralError{token.Position}
	}

	if bits < 16 {
		limit := uint16(1) << bits

		if result >= limit {
			return 0, &OversizedLiteralError{token.Position, limit - 1, result}
		}
	}

	return result, nil
}

func parseOperand(token *Token) (operand, error) {
	switch token.Type {
	case TOKEN_LITERAL:
		value, err := parseLiteral(token, LITERAL_WORD)

		if err != nil {
			return operand{}, err
		}

		return operand{OPERAND_LITERAL, value, token}, nil

	case TOKEN_IDENT:
		if kind, ok := keywords[strings.ToUpper(token.Value)]; ok {
			return operand{kind, 0, token}, nil
		}

		if reg, ok := parseRegister(token.Value); ok {
			return operand{OPERAND_REGISTER, reg, token}, nil
		}

		if looksLikeRegister(token.Value) {
			return operand{}, &InvalidRegisterError{token.Position}
		}

		return operand{OPERAND_LABEL, 0, token}, nil
	}

	return operand{}, &InvalidOperandError{
		token.Position,
		[]TokenType{TOKEN_IDENT, TOKEN_LITERAL},
		token.Type,
	}
}

func (a *assembler) emit(b byte) {
	if a.program >= machine.MEMORY_SIZE {
		a.overflow = true
		return
	}

	a.result[a.program] = b
	a.program++

	if a.program > a.end {
		a.end = a.program
	}
}

func (a *assembler) emitWord(w uint16) {
	a.emit(byte(w >> 8))
	a.emit(byte(w))
}

func (a *assembler) argc(keyword *Token, want, have int) bool {
	if want != have {
		a.errs = append(a.errs, &InvalidNumArgumentsError{keyword.Position, want, have})
		return false
	}

	return true
}

func (a *assembler) register(op *operand) uint16 {
	switch op.Type {
	case OPERAND_REGISTER:
		return op.Value
	case OPERAND_LITERAL:
		a.errs = append(
			a.errs,
			&InvalidOperandError{
				op.Token.Position,
				[]TokenType{TOKEN_IDENT},
				TOKEN_LITERAL,
			},
		)
	default:
		a.errs = append(a.errs, &InvalidRegisterError{op.Token.Position})
	}

	return 0
}

func (a *assembler) unsupported(op *operand) {
	a.errs = append(
		a.errs, &UnsupportedOperandError{op.Token.Position, op.Token.Value},
	)
}

// address resolves a literal or label into the low 12 bits of the word at
// the current program address.
func (a *assembler) address(op *operand) uint16 {
	switch op.Type {
	case OPERAND_LITERAL:
		if op.Value > 0xFFF {
			a.errs = append(
				a.errs,
				&OversizedLiteralError{op.Token.Position, 0xFFF, op.Value},
			)
		}

		return op.Value & 0xFFF

	case OPERAND_LABEL:
		a.labelRefs = append(
			a.labelRefs,
			labelRef{op.Token.Value, uint16(a.program), 0x0FFF, op.Token.Position},
		)

		return 0
	}

	a.unsupported(op)
	return 0
}

func (a *assembler) immediate(op *operand, bits LiteralType) uint16 {
	if op.Type != OPERAND_LITERAL {
		a.unsupported(op)
		return 0
	}

	limit := uint16(1) << bits

	if op.Value >= limit {
		a.errs = append(
			a.errs,
			&OversizedLiteralError{op.Token.Position, limit - 1, op.Value},
		)

		return 0
	}

	return op.Value
}

func (a *assembler) assembleLoad(dst, src *operand) uint16 {
	switch dst.Type {
	// LD I, addr   |1010|nnn          |
	case OPERAND_I:
		return 0xA000 | a.address(src)

	// LD DT, Vx    |1111|x   |0001|0101|
	case OPERAND_DT:
		return 0xF015 | a.register(src)<<8

	// LD ST, Vx    |1111|x   |0001|1000|
	case OPERAND_ST:
		return 0xF018 | a.register(src)<<8

	// LD F, Vx     |1111|x   |0010|1001|
	case OPERAND_F:
		return 0xF029 | a.register(src)<<8

	// LD B, Vx     |1111|x   |0011|0011|
	case OPERAND_B:
		return 0xF033 | a.register(src)<<8

	// LD [I], Vx   |1111|x   |0101|0101|
	case OPERAND_INDIRECT:
		return 0xF055 | a.register(src)<<8

	case OPERAND_REGISTER:
		x := dst.Value << 8

		switch src.Type {
		// LD Vx, Vy    |1000|x   |y   |0000|
		case OPERAND_REGISTER:
			return 0x8000 | x | src.Value<<4

		// LD Vx, byte  |0110|x   |nn       |
		case OPERAND_LITERAL:
			return 0x6000 | x | a.immediate(src, LITERAL_BYTE)

		// LD Vx, DT    |1111|x   |0000|0111|
		case OPERAND_DT:
			return 0xF007 | x

		// LD Vx, K     |1111|x   |0000|1010|
		case OPERAND_K:
			return 0xF00A | x

		// LD Vx, [I]   |1111|x   |0110|0101|
		case OPERAND_INDIRECT:
			return 0xF065 | x
		}

		a.unsupported(src)
		return 0
	}

	a.unsupported(dst)
	return 0
}

func (a *assembler) assembleInstruction(
	keyword *Token, instruction InstructionType, operands []operand,
) uint16 {
	count := len(operands)

	switch instruction {
	// CLS          |0000|0000|1110|0000|
	case INSTRUCTION_CLS:
		if a.argc(keyword, 0, count) {
			return 0x00E0
		}

	// RET          |0000|0000|1110|1110|
	case INSTRUCTION_RET:
		if a.argc(keyword, 0, count) {
			return 0x00EE
		}

	// JP addr      |0001|nnn          |
	// JP V0, addr  |1011|nnn          |
	case INSTRUCTION_JP:
		switch count {
		case 1:
			return 0x1000 | a.address(&operands[0])
		case 2:
			if operands[0].Type != OPERAND_REGISTER || operands[0].Value != 0 {
				a.errs = append(
					a.errs, &InvalidRegisterError{operands[0].Token.Position},
				)

				return 0
			}

			return 0xB000 | a.address(&operands[1])
		default:
			a.argc(keyword, 1, count)
		}

	// CALL addr    |0010|nnn          |
	case INSTRUCTION_CALL:
		if a.argc(keyword, 1, count) {
			return 0x2000 | a.address(&operands[0])
		}

	// SE Vx, byte  |0011|x   |nn       |
	// SE Vx, Vy    |0101|x   |y   |0000|
	// SNE Vx, byte |0100|x   |nn       |
	// SNE Vx, Vy   |1001|x   |y   |0000|
	case INSTRUCTION_SE, INSTRUCTION_SNE:
		if !a.argc(keyword, 2, count) {
			break
		}

		x := a.register(&operands[0]) << 8

		if operands[1].Type == OPERAND_REGISTER {
			y := operands[1].Value << 4

			if instruction == INSTRUCTION_SE {
				return 0x5000 | x | y
			}

			return 0x9000 | x | y
		}

		nn := a.immediate(&operands[1], LITERAL_BYTE)

		if instruction == INSTRUCTION_SE {
			return 0x3000 | x | nn
		}

		return 0x4000 | x | nn

	case INSTRUCTION_LD:
		if a.argc(keyword, 2, count) {
			return a.assembleLoad(&operands[0], &operands[1])
		}

	// ADD Vx, byte |0111|x   |nn       |
	// ADD Vx, Vy   |1000|x   |y   |0100|
	// ADD I, Vx    |1111|x   |0001|1110|
	case INSTRUCTION_ADD:
		if !a.argc(keyword, 2, count) {
			break
		}

		if operands[0].Type == OPERAND_I {
			return 0xF01E | a.register(&operands[1])<<8
		}

		x := a.register(&operands[0]) << 8

		if operands[1].Type == OPERAND_REGISTER {
			return 0x8004 | x | operands[1].Value<<4
		}

		return 0x7000 | x | a.immediate(&operands[1], LITERAL_BYTE)

	// OR Vx, Vy    |1000|x   |y   |0001|
	// AND Vx, Vy   |1000|x   |y   |0010|
	// XOR Vx, Vy   |1000|x   |y   |0011|
	// SUB Vx, Vy   |1000|x   |y   |0101|
	// SUBN Vx, Vy  |1000|x   |y   |0111|
	case INSTRUCTION_OR,
		INSTRUCTION_AND,
		INSTRUCTION_XOR,
		INSTRUCTION_SUB,
		INSTRUCTION_SUBN:
		if !a.argc(keyword, 2, count) {
			break
		}

		var scratch uint16 = 0x8000

		switch instruction {
		case INSTRUCTION_OR:
			scratch |= 0x1
		case INSTRUCTION_AND:
			scratch |= 0x2
		case INSTRUCTION_XOR:
			scratch |= 0x3
		case INSTRUCTION_SUB:
			scratch |= 0x5
		case INSTRUCTION_SUBN:
			scratch |= 0x7
		}

		scratch |= a.register(&operands[0]) << 8
		scratch |= a.register(&operands[1]) << 4

		return scratch

	// SHR Vx {, Vy} |1000|x   |y   |0110|
	// SHL Vx {, Vy} |1000|x   |y   |1110|
	case INSTRUCTION_SHR, INSTRUCTION_SHL:
		if count != 1 && count != 2 {
			a.argc(keyword, 2, count)
			break
		}

		var scratch uint16 = 0x8006

		if instruction == INSTRUCTION_SHL {
			scratch = 0x800E
		}

		scratch |= a.register(&operands[0]) << 8

		if count == 2 {
			scratch |= a.register(&operands[1]) << 4
		}

		return scratch

	// RND Vx, byte |1100|x   |nn       |
	case INSTRUCTION_RND:
		if a.argc(keyword, 2, count) {
			return 0xC000 |
				a.register(&operands[0])<<8 |
				a.immediate(&operands[1], LITERAL_BYTE)
		}

	// DRW Vx, Vy, n |1101|x   |y   |n   |
	case INSTRUCTION_DRW:
		if a.argc(keyword, 3, count) {
			return 0xD000 |
				a.register(&operands[0])<<8 |
				a.register(&operands[1])<<4 |
				a.immediate(&operands[2], LITERAL_NIBBLE)
		}

	// SKP Vx       |1110|x   |1001|1110|
	// SKNP Vx      |1110|x   |1010|0001|
	case INSTRUCTION_SKP, INSTRUCTION_SKNP:
		if !a.argc(keyword, 1, count) {
			break
		}

		if instruction == INSTRUCTION_SKP {
			return 0xE09E | a.register(&operands[0])<<8
		}

		return 0xE0A1 | a.register(&operands[0])<<8
	}

	return 0
}

func (a *assembler) assembleDirective(
	keyword *Token, directive DirectiveType, operands []Token,
) {
	if len(operands) == 0 {
		a.argc(keyword, 1, 0)
		return
	}

	switch directive {
	// .ORG addr
	case DIRECTIVE_ORG:
		if !a.argc(keyword, 1, len(operands)) {
			return
		}

		if operands[0].Type != TOKEN_LITERAL {
			a.errs = append(
				a.errs,
				&InvalidOperandError{
					operands[0].Position,
					[]TokenType{TOKEN_LITERAL},
					operands[0].Type,
				},
			)

			return
		}

		literal, err := parseLiteral(&operands[0], LITERAL_WORD)

		if err != nil {
			a.errs = append(a.errs, err)
			return
		}

		if literal < machine.MEMSPACE_PROGRAM || literal >= machine.MEMORY_SIZE {
			a.errs = append(
				a.errs, &InvalidOriginError{operands[0].Position, literal},
			)

			return
		}

		a.program = uint32(literal)

	// .DB byte, "string", ...
	case DIRECTIVE_DB:
		for i := range operands {
			switch operands[i].Type {
			case TOKEN_STRING:
				s, err := strconv.Unquote(operands[i].Value)

				if err != nil {
					a.errs = append(
						a.errs, &InvalidStringError{operands[i].Position},
					)

					continue
				}

				for j := 0; j < len(s); j++ {
					a.emit(s[j])
				}

			case TOKEN_LITERAL:
				literal, err := parseLiteral(&operands[i], LITERAL_BYTE)

				if err != nil {
					a.errs = append(a.errs, err)
				}

				a.emit(byte(literal))

			default:
				a.errs = append(
					a.errs,
					&InvalidOperandError{
						operands[i].Position,
						[]TokenType{TOKEN_LITERAL, TOKEN_STRING},
						operands[i].Type,
					},
				)
			}
		}

	// .DW word|label, ...
	case DIRECTIVE_DW:
		for i := range operands {
			switch operands[i].Type {
			case TOKEN_LITERAL:
				literal, err := parseLiteral(&operands[i], LITERAL_WORD)

				if err != nil {
					a.errs = append(a.errs, err)
				}

				a.emitWord(literal)

			case TOKEN_IDENT:
				a.labelRefs = append(
					a.labelRefs,
					labelRef{
						operands[i].Value,
						uint16(a.program),
						0xFFFF,
						operands[i].Position,
					},
				)

				a.emitWord(0)

			default:
				a.errs = append(
					a.errs,
					&InvalidOperandError{
						operands[i].Position,
						[]TokenType{TOKEN_LITERAL, TOKEN_IDENT},
						operands[i].Type,
					},
				)
			}
		}
	}
}

// AssembleChip8Source assembles input into a ROM image loadable at 0x200.
// Every error found is returned; the image is only meaningful when errs is
// empty.
func AssembleChip8Source(input io.Reader, symtable *SymTable) (result []byte, errs []error) {
	var a = assembler{
		result:  make([]byte, machine.MEMORY_SIZE),
		program: uint32(machine.MEMSPACE_PROGRAM),
		end:     uint32(machine.MEMSPACE_PROGRAM),
		labels:  make(map[string]uint16),
		errs:    make([]error, 0),
	}

	var builder strings.Builder
	var scanner = bufio.NewScanner(input)

	var cursor = Cursor{Line: 1, Column: 0, Size: 0, Byte: 0}

	// Process:
	// - Parse line
	// - Assemble line
	for scanner.Scan() {
		var tokens = make([]Token, 0, 5)
		var tokenStart int = 0
		var tokenType TokenType = TOKEN_NONE

		var lineErrs = len(a.errs)

		line := scanner.Text()
		builder.Grow(len(line))

		cursor.Size = int64(len(line))

		flushToken := func() {
			if builder.Len() > 0 {
				var token Token
				token.Position = Cursor{
					Line:     cursor.Line,
					Column:   tokenStart,
					Byte:     cursor.Byte + int64(tokenStart-1),
					Size:     int64(builder.Len()),
					LineByte: cursor.LineByte,
				}
				token.Type = tokenType
				token.Value = builder.String()
				tokens = append(tokens, token)
				builder.Reset()
			}

			tokenType = TOKEN_NONE
		}

		// Parse Line:
		// - Gather tokens and their types
		// - Check for syntax errors
	scan:
		for column, char := range line {
			cursor.Column = column + 1

			if tokenType == TOKEN_NONE {
				tokenStart = cursor.Column
			}

			if tokenType == TOKEN_STRING {
				builder.WriteRune(char)

				if char == '"' && builder.Len() > 1 {
					flushToken()
				}

				continue
			}

			switch {
			// Whitespace
			case unicode.IsSpace(char):
				flushToken()

			// Comments
			case char == ';':
				break scan

			// Operand Separator
			case char == ',':
				if tokenType == TOKEN_NONE && len(tokens) == 0 {
					a.errs = append(a.errs, &UnexpectedCharacterError{cursor, char})
				}

				flushToken()

			// Label terminator (i.e. loop:)
			case char == ':':
				if tokenType != TOKEN_IDENT {
					a.errs = append(a.errs, &UnexpectedCharacterError{cursor, char})
				}

				flushToken()

			// Assembler Directives
			case char == '.':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_DIRECTIVE
					builder.WriteRune(char)
				} else {
					a.errs = append(a.errs, &UnexpectedCharacterError{cursor, char})
				}

			// String Literal
			case char == '"':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_STRING
					builder.WriteRune(char)
				} else {
					a.errs = append(a.errs, &UnexpectedCharacterError{cursor, char})
				}

			// Prefixed Literal (i.e. $2A, #42, %1010)
			case char == '$' || char == '#' || char == '%':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
					builder.WriteRune(char)
				} else {
					a.errs = append(a.errs, &UnexpectedCharacterError{cursor, char})
				}

			// Numeric Literal
			case unicode.IsDigit(char):
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
				}

				builder.WriteRune(char)

			// Indirect Operand (i.e. [I])
			case char == '[' || char == ']':
				if tokenType == TOKEN_NONE && char == '[' {
					tokenType = TOKEN_IDENT
				} else if tokenType != TOKEN_IDENT {
					a.errs = append(a.errs, &UnexpectedCharacterError{cursor, char})
				}

				builder.WriteRune(char)

			// Identifier
			case char == '_' || unicode.IsLetter(char):
				if char > unicode.MaxASCII {
					a.errs = append(a.errs, &OversizedCharacterError{cursor})
				}

				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_IDENT
				}

				builder.WriteRune(char)

			default:
				if char > unicode.MaxASCII {
					a.errs = append(a.errs, &OversizedCharacterError{cursor})
				} else {
					a.errs = append(a.errs, &UnexpectedCharacterError{cursor, char})
				}
			}
		}

		if tokenType == TOKEN_STRING {
			a.errs = append(a.errs, &InvalidStringError{cursor})
		}

		flushToken()

		lineLength := int64(len(line) + 1)

		// Pass any potential assembler errors if we already had parser errors
		if len(tokens) == 0 || len(a.errs) > lineErrs {
			cursor.Line++
			cursor.Byte += lineLength
			cursor.LineByte += lineLength
			continue
		}

		// Assemble line
		// - Write instruction bytes to result
		// - Save label refs for unresolved labels
		// - Type check instruction operands
		var directive DirectiveType
		var instruction InstructionType
		var keyword *Token = nil
		var args []Token

		first := 0

		if tokens[0].Type == TOKEN_IDENT &&
			parseInstruction(tokens[0].Value) == INSTRUCTION_INVALID {
			label := &tokens[0]

			if _, exists := a.labels[label.Value]; !exists {
				a.labels[label.Value] = uint16(a.program)
			} else {
				a.errs = append(
					a.errs, &RedeclaredLabelError{label.Position, label.Value},
				)
			}

			first = 1
		}

		if first < len(tokens) {
			if instruction = parseInstruction(tokens[first].Value); instruction != INSTRUCTION_INVALID {
				keyword = &tokens[first]
			} else if directive = parseDirective(tokens[first].Value); directive != DIRECTIVE_INVALID {
				keyword = &tokens[first]
			} else {
				a.errs = append(
					a.errs,
					&UnknownIdentifierError{tokens[first].Position, tokens[first].Value},
				)
			}

			args = tokens[first+1:]
		}

		if directive != DIRECTIVE_INVALID {
			a.assembleDirective(keyword, directive, args)
		}

		if instruction != INSTRUCTION_INVALID {
			operands := make([]operand, 0, len(args))

			for i := range args {
				op, err := parseOperand(&args[i])

				if err != nil {
					a.errs = append(a.errs, err)
					continue
				}

				operands = append(operands, op)
			}

			var scratch uint16

			if len(operands) == len(args) {
				scratch = a.assembleInstruction(keyword, instruction, operands)
			}

			if symtable != nil {
				symtable.Symbols[uint16(a.program)] = cursor.LineByte
			}

			a.emitWord(scratch)
		}

		if a.overflow {
			a.errs = append(a.errs, &OversizedBinaryError{})
			return nil, a.errs
		}

		cursor.Line++
		cursor.Byte += lineLength
		cursor.LineByte += lineLength
	}

	// Label
	// - Validate and resolve label references
	// - Add labels to symbol table
	for _, ref := range a.labelRefs {
		addr, exists := a.labels[ref.Label]

		if !exists {
			a.errs = append(a.errs, &UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		if addr > ref.Mask {
			a.errs = append(
				a.errs,
				&OversizedLabelError{ref.Position, int64(ref.Mask), int64(addr)},
			)

			continue
		}

		scratch := encoding.Word(a.result[ref.Addr], a.result[ref.Addr+1])
		scratch |= addr & ref.Mask

		a.result[ref.Addr] = byte(scratch >> 8)
		a.result[ref.Addr+1] = byte(scratch)
	}

	if symtable != nil {
		for label, addr := range a.labels {
			symtable.Labels[addr] = label
		}
	}

	return a.result[machine.MEMSPACE_PROGRAM:a.end], a.errs
}
