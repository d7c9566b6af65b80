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

package frontend_test

import (
	"testing"
	"time"

	"github.com/lassandro/gochip8/pkg/frontend"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/assert"
)

func TestHeldKeys(t *testing.T) {
	now := time.Now()

	var pressed [machine.KEY_COUNT]time.Time
	pressed[0x1] = now.Add(-50 * time.Millisecond)
	pressed[0x2] = now.Add(-frontend.KEY_HOLD)
	pressed[0xF] = now

	keys := frontend.HeldKeys(pressed, now, frontend.KEY_HOLD)

	assert.True(t, keys.Down(0x1))
	assert.False(t, keys.Down(0x2))
	assert.True(t, keys.Down(0xF))
	assert.False(t, keys.Down(0x0))
}

func TestScanInput(t *testing.T) {
	tests := []struct {
		Name  string
		Input string
		Chars string
		Quit  bool
	}{
		{Name: "plain keys", Input: "qw1", Chars: "qw1"},
		{Name: "lone escape", Input: "q\x1b", Chars: "q", Quit: true},
		{Name: "interrupt", Input: "a\x03b", Chars: "a", Quit: true},
		{Name: "arrow key", Input: "\x1b[A", Chars: ""},
		{Name: "arrow between keys", Input: "q\x1b[Dw", Chars: "qw"},
		{Name: "csi with parameters", Input: "\x1b[1;5Cx", Chars: "x"},
		{Name: "function key", Input: "\x1bOPz", Chars: "z"},
		{Name: "alt modifier", Input: "\x1bqe", Chars: "e"},
		{Name: "unterminated csi", Input: "\x1b[12", Chars: ""},
	}

	for _, test := range tests {
		chars, quit := frontend.ScanInput([]byte(test.Input))

		if string(chars) != test.Chars || quit != test.Quit {
			t.Errorf(
				"%s\nwant:%q %v\nhave:%q %v",
				test.Name, test.Chars, test.Quit, string(chars), quit,
			)
		}
	}
}
