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
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/lassandro/gochip8/pkg/config"
	"github.com/lassandro/gochip8/pkg/machine"
	"github.com/retroenv/retrogolib/log"
)

var hostKeys = map[rune]ebiten.Key{
	'0': ebiten.Key0, '1': ebiten.Key1, '2': ebiten.Key2, '3': ebiten.Key3,
	'4': ebiten.Key4, '5': ebiten.Key5, '6': ebiten.Key6, '7': ebiten.Key7,
	'8': ebiten.Key8, '9': ebiten.Key9,
	'A': ebiten.KeyA, 'B': ebiten.KeyB, 'C': ebiten.KeyC, 'D': ebiten.KeyD,
	'E': ebiten.KeyE, 'F': ebiten.KeyF, 'G': ebiten.KeyG, 'H': ebiten.KeyH,
	'I': ebiten.KeyI, 'J': ebiten.KeyJ, 'K': ebiten.KeyK, 'L': ebiten.KeyL,
	'M': ebiten.KeyM, 'N': ebiten.KeyN, 'O': ebiten.KeyO, 'P': ebiten.KeyP,
	'Q': ebiten.KeyQ, 'R': ebiten.KeyR, 'S': ebiten.KeyS, 'T': ebiten.KeyT,
	'U': ebiten.KeyU, 'V': ebiten.KeyV, 'W': ebiten.KeyW, 'X': ebiten.KeyX,
	'Y': ebiten.KeyY, 'Z': ebiten.KeyZ,
	',': ebiten.KeyComma, '.': ebiten.KeyPeriod, '/': ebiten.KeySlash,
	';': ebiten.KeySemicolon, '-': ebiten.KeyMinus, '=': ebiten.KeyEqual,
}

// Game is the ebiten host: one Update per tick feeds real elapsed time to
// the machine and Draw scales the framebuffer with a one pixel grid gap.
type Game struct {
	ctx     context.Context
	session *Session
	scale   int
	keys    [machine.KEY_COUNT]ebiten.Key
	bound   [machine.KEY_COUNT]bool

	window *ebiten.Image
	pixels []byte
	last   time.Time
}

func NewGame(ctx context.Context, session *Session, cfg config.Config) *Game {
	g := &Game{
		ctx:     ctx,
		session: session,
		scale:   cfg.Scale,
	}

	keymap := cfg.Keymap()

	for key, r := range keymap {
		if hostKey, ok := hostKeys[r]; ok {
			g.keys[key] = hostKey
			g.bound[key] = true
		} else if session.Logger != nil {
			session.Logger.Warn("Key has no window binding",
				log.String("key", string(r)),
				log.Int("keypad", key))
		}
	}

	g.pixels = make([]byte, 4*machine.SCREEN_WIDTH*machine.SCREEN_HEIGHT*g.scale*g.scale)
	return g
}

// Run opens the window and blocks until it closes or ctx is cancelled.
func (g *Game) Run() error {
	w, h := g.Layout(0, 0)

	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("gochip8")
	ebiten.SetTPS(FRAME_RATE)

	defer g.session.Close()
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.session.Reset()
	}

	var keys machine.Keypad

	for key := range g.keys {
		if g.bound[key] && ebiten.IsKeyPressed(g.keys[key]) {
			keys = keys.Press(uint8(key))
		}
	}

	now := time.Now()
	delta := time.Second / FRAME_RATE

	if !g.last.IsZero() {
		delta = now.Sub(g.last)
	}

	g.last = now

	return g.session.Advance(delta, keys)
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.window == nil {
		w, h := g.Layout(0, 0)
		g.window = ebiten.NewImage(w, h)
	}

	RenderPixels(&g.session.Machine.State.Display, g.scale, g.pixels)
	g.window.WritePixels(g.pixels)
	screen.DrawImage(g.window, nil)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return machine.SCREEN_WIDTH * g.scale, machine.SCREEN_HEIGHT * g.scale
}
