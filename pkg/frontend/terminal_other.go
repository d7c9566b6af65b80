//go:build !(linux || darwin || freebsd || netbsd || openbsd)

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
	"io"
	"os"

	"github.com/lassandro/gochip8/pkg/config"
)

var ErrNotTerminal = errors.New("terminal frontend is not supported on this platform")

type Terminal struct{}

func NewTerminal(session *Session, cfg config.Config, in *os.File, out io.Writer) *Terminal {
	return &Terminal{}
}

func (t *Terminal) Run(ctx context.Context) error {
	return ErrNotTerminal
}
