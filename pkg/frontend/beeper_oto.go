//go:build !headless

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
	"sync"

	"github.com/ebitengine/oto/v3"
)

type OtoBeeper struct {
	ctx     *oto.Context
	player  *oto.Player
	started bool
	mutex   sync.Mutex
}

func NewOtoBeeper() (*OtoBeeper, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SAMPLE_RATE,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	tone := &Tone{
		SampleRate: SAMPLE_RATE,
		Frequency:  TONE_FREQUENCY,
		Volume:     TONE_VOLUME,
	}

	return &OtoBeeper{
		ctx:    ctx,
		player: ctx.NewPlayer(tone),
	}, nil
}

func (ob *OtoBeeper) Start() {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()

	if !ob.started && ob.player != nil {
		ob.player.Play()
		ob.started = true
	}
}

func (ob *OtoBeeper) Stop() {
	ob.mutex.Lock()
	defer ob.mutex.Unlock()

	if ob.started && ob.player != nil {
		ob.player.Pause()
		ob.started = false
	}
}

func (ob *OtoBeeper) Close() error {
	ob.Stop()
	ob.mutex.Lock()
	defer ob.mutex.Unlock()

	if ob.player == nil {
		return nil
	}

	err := ob.player.Close()
	ob.player = nil
	return err
}
