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
)

var (
	ErrRomTooLarge        = errors.New("rom too large")
	ErrAddressOutOfRange  = errors.New("address out of range")
	ErrStackOverflow      = errors.New("stack overflow")
	ErrStackUnderflow     = errors.New("stack underflow")
	ErrUnrecognizedOpcode = errors.New("unrecognized opcode")
	ErrFaulted            = errors.New("machine faulted")
)

// Fault wraps an execution error with the instruction that raised it.
type Fault struct {
	Program     uint16
	Instruction uint16
	Err         error
}

func (err *Fault) Error() string {
	return fmt.Sprintf("[%#04x] %#04x: %s", err.Program, err.Instruction, err.Err)
}

func (err *Fault) Unwrap() error {
	return err.Err
}

func addressError(addr int) error {
	return fmt.Errorf("%w: %#04x", ErrAddressOutOfRange, addr)
}
