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

import "time"

const second = int64(time.Second)

// Stepper is driven by a Clock.
type Stepper interface {
	DecayTimers()
	Step() error
}

// Clock converts host elapsed time into two fixed-rate event streams:
// timer decay at TIMER_HZ and instruction execution at Rate. Events are
// emitted in simulated-time order, timer first on ties, so the result
// depends only on the total time supplied and never on how it was split
// across calls.
type Clock struct {
	// Instructions per second, DEFAULT_CPU_HZ when zero
	Rate int

	// Simulated nanoseconds since the last whole-second rebase
	now    int64
	timers int64
	cycles int64
	rate   int64
}

func (clk *Clock) Reset() {
	clk.now = 0
	clk.timers = 0
	clk.cycles = 0
	clk.rate = 0
}

// SetRate changes the instruction rate without replaying or dropping the
// time already consumed.
func (clk *Clock) SetRate(rate int) {
	clk.Rate = rate
	clk.sync()
}

func (clk *Clock) sync() {
	rate := int64(clk.Rate)

	if rate <= 0 {
		rate = DEFAULT_CPU_HZ
	}

	if rate != clk.rate {
		clk.rate = rate
		clk.cycles = clk.now * rate / second
	}
}

// Advance accumulates delta and drains every timer and instruction step
// that has come due. After a step error the remaining instruction steps of
// this call are consumed without running, timers keep decaying, and the
// first error is returned.
func (clk *Clock) Advance(delta time.Duration, target Stepper) error {
	clk.sync()

	if delta > 0 {
		clk.now += int64(delta)
	}

	var halt error

	for {
		timerDue := (clk.timers+1)*second <= clk.now*TIMER_HZ
		cycleDue := (clk.cycles+1)*second <= clk.now*clk.rate

		if !timerDue && !cycleDue {
			break
		}

		// Compare (timers+1)/TIMER_HZ against (cycles+1)/rate
		if timerDue && (!cycleDue || (clk.timers+1)*clk.rate <= (clk.cycles+1)*TIMER_HZ) {
			clk.timers++
			target.DecayTimers()
			continue
		}

		clk.cycles++

		if halt != nil {
			continue
		}

		halt = target.Step()
	}

	for clk.now >= second && clk.timers >= TIMER_HZ && clk.cycles >= clk.rate {
		clk.now -= second
		clk.timers -= TIMER_HZ
		clk.cycles -= clk.rate
	}

	return halt
}

