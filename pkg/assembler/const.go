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

const (
	TOKEN_NONE TokenType = iota
	TOKEN_IDENT
	TOKEN_DIRECTIVE
	TOKEN_STRING
	TOKEN_LITERAL
)

const (
	LITERAL_NIBBLE  LiteralType = 4
	LITERAL_BYTE                = 8
	LITERAL_ADDRESS             = 12
	LITERAL_WORD                = 16
)

const (
	INSTRUCTION_INVALID InstructionType = iota
	INSTRUCTION_CLS
	INSTRUCTION_RET
	INSTRUCTION_JP
	INSTRUCTION_CALL
	INSTRUCTION_SE
	INSTRUCTION_SNE
	INSTRUCTION_LD
	INSTRUCTION_ADD
	INSTRUCTION_OR
	INSTRUCTION_AND
	INSTRUCTION_XOR
	INSTRUCTION_SUB
	INSTRUCTION_SHR
	INSTRUCTION_SUBN
	INSTRUCTION_SHL
	INSTRUCTION_RND
	INSTRUCTION_DRW
	INSTRUCTION_SKP
	INSTRUCTION_SKNP
)

const (
	DIRECTIVE_INVALID DirectiveType = iota
	DIRECTIVE_ORG
	DIRECTIVE_DB
	DIRECTIVE_DW
)

const (
	OPERAND_NONE OperandType = iota
	OPERAND_REGISTER
	OPERAND_LITERAL
	OPERAND_LABEL
	OPERAND_I
	OPERAND_INDIRECT // [I]
	OPERAND_DT
	OPERAND_ST
	OPERAND_K
	OPERAND_F
	OPERAND_B
)

var instructions = map[string]InstructionType{
	"CLS":  INSTRUCTION_CLS,
	"RET":  INSTRUCTION_RET,
	"JP":   INSTRUCTION_JP,
	"CALL": INSTRUCTION_CALL,
	"SE":   INSTRUCTION_SE,
	"SNE":  INSTRUCTION_SNE,
	"LD":   INSTRUCTION_LD,
	"ADD":  INSTRUCTION_ADD,
	"OR":   INSTRUCTION_OR,
	"AND":  INSTRUCTION_AND,
	"XOR":  INSTRUCTION_XOR,
	"SUB":  INSTRUCTION_SUB,
	"SHR":  INSTRUCTION_SHR,
	"SUBN": INSTRUCTION_SUBN,
	"SHL":  INSTRUCTION_SHL,
	"RND":  INSTRUCTION_RND,
	"DRW":  INSTRUCTION_DRW,
	"SKP":  INSTRUCTION_SKP,
	"SKNP": INSTRUCTION_SKNP,
}

var directives = map[string]DirectiveType{
	".ORG": DIRECTIVE_ORG,
	".DB":  DIRECTIVE_DB,
	".DW":  DIRECTIVE_DW,
}

var keywords = map[string]OperandType{
	"I":   OPERAND_I,
	"[I]": OPERAND_INDIRECT,
	"DT":  OPERAND_DT,
	"ST":  OPERAND_ST,
	"K":   OPERAND_K,
	"F":   OPERAND_F,
	"B":   OPERAND_B,
}
