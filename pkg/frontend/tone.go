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
	"encoding/binary"
	"math"
)

const (
	SAMPLE_RATE    = 44100
	TONE_FREQUENCY = 440
	TONE_VOLUME    = 0.25
)

// Tone is an endless mono square wave in 32-bit float little-endian
// samples.
type Tone struct {
	SampleRate int
	Frequency  float64
	Volume     float32

	phase float64
}

func (t *Tone) Read(p []byte) (int, error) {
	step := t.Frequency / float64(t.SampleRate)
	n := len(p) - len(p)%4

	for i := 0; i < n; i += 4 {
		sample := t.Volume

		if t.phase >= 0.5 {
			sample = -sample
		}

		binary.LittleEndian.PutUint32(p[i:], math.Float32bits(sample))

		t.phase += step
		t.phase -= math.Floor(t.phase)
	}

	return n, nil
}
