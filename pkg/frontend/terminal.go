//go:build linux || darwin || freebsd || netbsd || openbsd

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

package frontend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminals only report key presses, so a key counts as held until this
// long after its last repeat.
const KEY_HOLD = 200 * time.Millisecond

const (
	keyEscape    = 0x1B
	keyInterrupt = 0x03
)

var ErrNotTerminal = errors.New("standard input is not a terminal")

type Terminal struct {
	session *Session
	keymap  config.Keymap
	in      *os.File
	out     io.Writer

	held    [machine.KEY_COUNT]time.Time
	restore unix.Termios
}

func NewTerminal(session *Session, cfg config.Config, in *os.File, out io.Writer) *Terminal {
	return &Terminal{
		session: session,
		keymap:  cfg.Keymap(),
		in:      in,
		out:     out,
	}
}

func (t *Terminal) enterRaw() error {
	fd := int(t.in.Fd())

	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)

	if err != nil {
		return err
	}

	t.restore = *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	termstate.Cc[unix.VMIN] = 0
	termstate.Cc[unix.VTIME] = 0

	return unix.IoctlSetTermios(fd, ioctlSetTermios, &termstate)
}

func (t *Terminal) exitRaw() error {
	return unix.IoctlSetTermios(int(t.in.Fd()), ioctlSetTermios, &t.restore)
}

// Run takes over the terminal until Escape is pressed or ctx is cancelled.
func (t *Terminal) Run(ctx context.Context) error {
	fd := int(t.in.Fd())

	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}

	if w, h, err := term.GetSize(fd); err == nil && t.session.Logger != nil {
		if w < machine.SCREEN_WIDTH || h < machine.SCREEN_HEIGHT/2 {
			t.session.Logger.Warn("Terminal smaller than display",
				log.Int("columns", w),
				log.Int("rows", h))
		}
	}

	if err := t.enterRaw(); err != nil {
		return err
	}

	defer func() {
		fmt.Fprint(t.out, "\033[?25h")
		_ = t.exitRaw()
	}()

	defer t.session.Close()

	fmt.Fprint(t.out, "\033[2J\033[?25l")

	ticker := time.NewTicker(time.Second / FRAME_RATE)
	defer ticker.Stop()

	last := time.Now()
	input := make([]byte, 64)

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			n, err := t.in.Read(input)

			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}

			if quit := t.press(input[:n], now); quit {
				return nil
			}

			keys := HeldKeys(t.held, now, KEY_HOLD)

			if err := t.session.Advance(now.Sub(last), keys); err != nil {
				return err
			}

			last = now

			fmt.Fprint(t.out, "\033[H"+RenderHalfBlocks(&t.session.Machine.State.Display))
		}
	}
}

func (t *Terminal) press(input []byte, now time.Time) bool {
	chars, quit := ScanInput(input)

	for _, c := range chars {
		if key, ok := t.keymap.Lookup(rune(c)); ok {
			t.held[key] = now
		}
	}

	return quit
}

// ScanInput splits one raw read into plain characters, dropping escape
// sequences. Quit is reported for Ctrl-C or an escape byte that ends the
// read on its own.
func ScanInput(input []byte) (chars []byte, quit bool) {
	for i := 0; i < len(input); i++ {
		b := input[i]

		switch b {
		case keyInterrupt:
			return chars, true

		case keyEscape:
			if i+1 == len(input) {
				return chars, true
			}

			switch input[i+1] {
			case '[':
				// CSI: parameters, then a final byte in 0x40-0x7E
				i += 2
				for i < len(input) && (input[i] < 0x40 || input[i] > 0x7E) {
					i++
				}
			case 'O':
				i += 2
			default:
				i++
			}

			continue
		}

		chars = append(chars, b)
	}

	return chars, false
}

// HeldKeys returns the keys pressed within hold of now.
func HeldKeys(pressed [machine.KEY_COUNT]time.Time, now time.Time, hold time.Duration) machine.Keypad {
	var keys machine.Keypad

	for key, at := range pressed {
		if !at.IsZero() && now.Sub(at) < hold {
			keys = keys.Press(uint8(key))
		}
	}

	return keys
}
