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

// Package config holds the emulator's run settings and logger setup.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"unicode"

	"github.com/lassandro/gochip8/pkg/machine"
)

const (
	FRONTEND_EBITEN   = "ebiten"
	FRONTEND_TERMINAL = "terminal"
)

const (
	DEFAULT_SCALE  = 10
	DEFAULT_KEYMAP = "X123QWEASDZC4RFV"
)

var (
	ErrInvalidRate     = errors.New("cpu rate must be positive")
	ErrInvalidScale    = errors.New("display scale must be positive")
	ErrUnknownFrontend = errors.New("unknown frontend")
	ErrInvalidKeymap   = errors.New("invalid keymap")
)

// Keymap holds the host key for each keypad key, indexed by keypad value.
type Keymap [machine.KEY_COUNT]rune

type Config struct {
	Rate     int
	Scale    int
	Frontend string
	Strict   bool
	Seed     uint64
	DumpPath string
	Keys     string

	ShiftUsesVY           bool
	JumpUsesVX            bool
	MemoryIncrementsIndex bool
	LogicResetsFlag       bool
}

func Default() Config {
	return Config{
		Rate:     machine.DEFAULT_CPU_HZ,
		Scale:    DEFAULT_SCALE,
		Frontend: FRONTEND_EBITEN,
		Keys:     DEFAULT_KEYMAP,
	}
}

// RegisterFlags binds every setting to a command-line flag, using the
// current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.Rate, "rate", c.Rate, "Instructions executed per second")
	fs.IntVar(&c.Scale, "scale", c.Scale, "Window pixels per display pixel")
	fs.StringVar(
		&c.Frontend, "frontend", c.Frontend,
		"Host to run under, either 'ebiten' or 'terminal'",
	)
	fs.BoolVar(
		&c.Strict, "strict", c.Strict,
		"Fault on unrecognized instructions instead of skipping them",
	)
	fs.Uint64Var(
		&c.Seed, "seed", c.Seed,
		"Seed for the random number generator, 0 picks one at random",
	)
	fs.StringVar(
		&c.DumpPath, "dump", c.DumpPath,
		"Writes the final memory image to this file on exit",
	)
	fs.StringVar(
		&c.Keys, "keymap", c.Keys,
		"Host keys for keypad 0 through F, as one 16 character string",
	)
	fs.BoolVar(
		&c.ShiftUsesVY, "quirk-shift", c.ShiftUsesVY,
		"8xy6/8xyE shift VY into VX",
	)
	fs.BoolVar(
		&c.JumpUsesVX, "quirk-jump", c.JumpUsesVX,
		"Bnnn jumps relative to VX instead of V0",
	)
	fs.BoolVar(
		&c.MemoryIncrementsIndex, "quirk-memory", c.MemoryIncrementsIndex,
		"Fx55/Fx65 advance I past the transferred registers",
	)
	fs.BoolVar(
		&c.LogicResetsFlag, "quirk-logic", c.LogicResetsFlag,
		"8xy1/8xy2/8xy3 clear VF",
	)
}

func (c Config) Validate() error {
	if c.Rate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidRate, c.Rate)
	}

	if c.Scale <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidScale, c.Scale)
	}

	switch c.Frontend {
	case FRONTEND_EBITEN, FRONTEND_TERMINAL:
	default:
		return fmt.Errorf("%w: '%s'", ErrUnknownFrontend, c.Frontend)
	}

	if _, err := ParseKeymap(c.Keys); err != nil {
		return err
	}

	return nil
}

func (c Config) Quirks() machine.Quirks {
	return machine.Quirks{
		ShiftUsesVY:           c.ShiftUsesVY,
		JumpUsesVX:            c.JumpUsesVX,
		MemoryIncrementsIndex: c.MemoryIncrementsIndex,
		LogicResetsFlag:       c.LogicResetsFlag,
	}
}

// Keymap returns the parsed key map, falling back to the default layout if
// Keys does not parse.
func (c Config) Keymap() Keymap {
	keymap, err := ParseKeymap(c.Keys)

	if err != nil {
		keymap, _ = ParseKeymap(DEFAULT_KEYMAP)
	}

	return keymap
}

// ParseKeymap reads one host key per keypad key. Letters are case
// insensitive and every key must be distinct.
func ParseKeymap(s string) (Keymap, error) {
	var keymap Keymap

	runes := []rune(strings.ToUpper(s))

	if len(runes) != machine.KEY_COUNT {
		return keymap, fmt.Errorf(
			"%w: want %d keys, have %d", ErrInvalidKeymap, machine.KEY_COUNT, len(runes),
		)
	}

	seen := make(map[rune]bool, machine.KEY_COUNT)

	for i, r := range runes {
		if seen[r] {
			return keymap, fmt.Errorf("%w: '%c' used twice", ErrInvalidKeymap, r)
		}

		if unicode.IsSpace(r) || r > unicode.MaxASCII {
			return keymap, fmt.Errorf("%w: '%c' is not a key", ErrInvalidKeymap, r)
		}

		seen[r] = true
		keymap[i] = r
	}

	return keymap, nil
}

// Lookup returns the keypad key bound to the host key r.
func (k Keymap) Lookup(r rune) (uint8, bool) {
	r = unicode.ToUpper(r)

	for key, bound := range k {
		if bound == r {
			return uint8(key), true
		}
	}

	return 0, false
}
