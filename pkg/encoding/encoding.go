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

package encoding

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidLiteral = errors.New("invalid literal")

// Decodes a hexidecimal string in the formats: 0xFFF, xFFF, $FFF
func DecodeHex(s string) (uint16, error) {
	switch {
	case strings.HasPrefix(s, "$"):
		s = s[1:]
	case len(s) > 1 && (s[:2] == "0x" || s[:2] == "0X"):
		s = s[2:]
	case len(s) > 0 && (s[0] == 'x' || s[0] == 'X'):
		s = s[1:]
	default:
		return 0, ErrInvalidLiteral
	}

	result, err := strconv.ParseUint(s, 16, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-2 string in the formats: %1010, 0b1010
func DecodeBinary(s string) (uint16, error) {
	switch {
	case strings.HasPrefix(s, "%"):
		s = s[1:]
	case len(s) > 1 && (s[:2] == "0b" || s[:2] == "0B"):
		s = s[2:]
	default:
		return 0, ErrInvalidLiteral
	}

	result, err := strconv.ParseUint(s, 2, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// Decodes a base-10 string in the formats: #123, 123
func DecodeInt(s string) (uint16, error) {
	s = strings.TrimPrefix(s, "#")

	result, err := strconv.ParseUint(s, 10, 16)

	if err != nil {
		return 0, err
	}

	return uint16(result), nil
}

// DecodeLiteral accepts any of the hex, binary or decimal formats.
func DecodeLiteral(s string) (uint16, error) {
	if IsHex(s) {
		return DecodeHex(s)
	}

	if strings.HasPrefix(s, "%") || strings.HasPrefix(s, "0b") ||
		strings.HasPrefix(s, "0B") {
		return DecodeBinary(s)
	}

	return DecodeInt(s)
}

func IsHex(s string) bool {
	return strings.HasPrefix(s, "$") || strings.HasPrefix(s, "0x") ||
		strings.HasPrefix(s, "0X") ||
		(len(s) > 1 && (s[0] == 'x' || s[0] == 'X') && isHexDigits(s[1:]))
}

func isHexDigits(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}

	return true
}

// Word joins two bytes in big-endian order.
func Word(high, low byte) uint16 {
	return uint16(high)<<8 | uint16(low)
}

// Nibble returns the i-th 4-bit field of word, counting from the top.
func Nibble(word uint16, i uint) uint8 {
	return uint8(word>>(12-4*(i&0x3))) & 0xF
}
