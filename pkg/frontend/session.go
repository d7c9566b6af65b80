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

// Package frontend connects a machine to a real screen, keyboard and
// speaker.
package frontend

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/log"
)

// Host frame loops run at the CHIP-8 display refresh rate.
const FRAME_RATE = 60

// Beeper plays the machine's single tone.
type Beeper interface {
	Start()
	Stop()
}

// Bell sounds the terminal bell once per tone.
type Bell struct {
	Out io.Writer
}

func (b Bell) Start() {
	fmt.Fprint(b.Out, "\a")
}

func (b Bell) Stop() {}

// Session drives a machine from a host frame loop, shared by every
// frontend.
type Session struct {
	Machine *machine.Machine
	Beeper  Beeper
	Logger  *log.Logger

	sounding bool
	faulted  bool
}

// Advance applies the held keys, runs delta worth of timers and
// instructions and updates the tone. A machine fault is reported once and
// leaves the machine halted with its last frame on screen; only host
// problems are returned.
func (s *Session) Advance(delta time.Duration, keys machine.Keypad) error {
	s.Machine.SetKeys(keys)

	if err := s.Machine.Tick(delta); err != nil {
		if !machine.IsFault(err) && !errors.Is(err, machine.ErrFaulted) {
			return err
		}

		if !s.faulted {
			s.faulted = true

			if s.Logger != nil {
				s.Logger.Error("Machine halted, press F5 to reset", log.Err(err))
			}
		}
	}

	s.updateTone()
	return nil
}

func (s *Session) Reset() {
	s.Machine.Reset()
	s.faulted = false
	s.updateTone()

	if s.Logger != nil {
		s.Logger.Info("Machine reset")
	}
}

// Faulted reports whether the machine stopped on an error.
func (s *Session) Faulted() bool {
	return s.faulted
}

// Close silences the tone.
func (s *Session) Close() {
	if s.sounding && s.Beeper != nil {
		s.Beeper.Stop()
	}

	s.sounding = false
}

func (s *Session) updateTone() {
	active := s.Machine.SoundActive()

	if active == s.sounding {
		return
	}

	s.sounding = active

	if s.Beeper == nil {
		return
	}

	if active {
		s.Beeper.Start()
	} else {
		s.Beeper.Stop()
	}
}
