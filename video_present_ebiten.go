// video_present_ebiten.go - Framebuffer core presentation through ebiten

/*
Every console except the PlayStation renders into a plain RGBA buffer, and
those are presented the easy way: ebiten owns the window, the game loop
and vsync, and each frame the core's framebuffer is uploaded into a
texture and drawn scaled to the window.
*/

package main

import (
	"fmt"
	"math"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
)

type ebitenSession struct {
	core  FramebufferCore
	audio AudioSink
	latch *InputLatch
	lua   *LuaAutomation

	tex  *ebiten.Image
	texW int
	texH int

	// >0 means run exactly this many frames then stop, for scripted runs.
	framesLeft int
	limited    bool
}

func (g *ebitenSession) Update() error {
	g.latch.Forward(g.core)
	if st := g.core.AdvanceVideoFrame(); st != CoreStatusNormal {
		fmt.Fprintf(os.Stderr, "present: core reported %v after frame advance\n", st)
	}
	g.audio.Submit(g.core.TakeAudioSamples())
	if g.lua != nil {
		if err := g.lua.OnFrame(); err != nil {
			if err == errAutomationDone {
				return ebiten.Termination
			}
			return err
		}
	}
	if g.limited {
		g.framesLeft--
		if g.framesLeft <= 0 {
			return ebiten.Termination
		}
	}
	return nil
}

func (g *ebitenSession) Draw(screen *ebiten.Image) {
	pix, w, h := g.core.Framebuffer()
	if w == 0 || h == 0 {
		return
	}
	if g.tex == nil || g.texW != w || g.texH != h {
		g.tex = ebiten.NewImage(w, h)
		g.texW, g.texH = w, h
	}
	g.tex.WritePixels(pix)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	scale := math.Min(float64(sw)/float64(w), float64(sh)/float64(h))
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((float64(sw)-float64(w)*scale)/2, (float64(sh)-float64(h)*scale)/2)
	screen.DrawImage(g.tex, op)
}

func (g *ebitenSession) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// newEbitenSession wires a framebuffer core to audio and input. The
// caller decides how the session is hosted: as the whole ebiten game
// (runEbitenSession) or embedded behind the GUI launcher.
func newEbitenSession(core FramebufferCore, cfg *Config, lua *LuaAutomation) (*ebitenSession, error) {
	audio, err := NewAudioSink(cfg.AudioBackend)
	if err != nil {
		return nil, err
	}
	if err := audio.Start(); err != nil {
		audio.Close()
		return nil, err
	}

	latch := NewInputLatch(keyboardSource{}, &gamepadSource{})
	if lua != nil {
		latch.AddSource(lua)
	}

	return &ebitenSession{
		core:       core,
		audio:      audio,
		latch:      latch,
		lua:        lua,
		framesLeft: cfg.Frames,
		limited:    cfg.Frames > 0,
	}, nil
}

func (g *ebitenSession) Close() {
	g.audio.Close()
}

// runEbitenSession drives a framebuffer core to completion (window close,
// script termination, or the -frames budget running out).
func runEbitenSession(core FramebufferCore, cfg *Config, title string, lua *LuaAutomation) error {
	session, err := newEbitenSession(core, cfg, lua)
	if err != nil {
		return err
	}
	defer session.Close()

	_, w, h := core.Framebuffer()
	if w == 0 || h == 0 {
		w, h = 320, 240
	}
	ebiten.SetWindowSize(w*cfg.Scale, h*cfg.Scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if cfg.LimitFPS {
		ebiten.SetTPS(int(math.Round(core.RefreshRate())))
	} else {
		ebiten.SetVsyncEnabled(false)
		ebiten.SetTPS(ebiten.SyncWithFPS)
	}

	if err := ebiten.RunGame(session); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}
