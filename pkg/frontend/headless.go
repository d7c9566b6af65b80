//go:build headless

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

	"github.com/lassandro/gochip8/pkg/config"
)

var ErrHeadless = errors.New("built without window support")

type Game struct {
	session *Session
}

func NewGame(ctx context.Context, session *Session, cfg config.Config) *Game {
	return &Game{session: session}
}

func (g *Game) Run() error {
	return ErrHeadless
}

type OtoBeeper struct {
	started bool
}

func NewOtoBeeper() (*OtoBeeper, error) {
	return &OtoBeeper{}, nil
}

func (ob *OtoBeeper) Start() {
	ob.started = true
}

func (ob *OtoBeeper) Stop() {
	ob.started = false
}

func (ob *OtoBeeper) Close() error {
	ob.started = false
	return nil
}
