// run_session.go - Per-system session dispatch

/*
Glue between a chosen ROM and a running session. Framebuffer cores go
through ebiten; the PlayStation goes through the Vulkan presentation
pipeline when a window host is linked in, or through the software blit
for headless scripted runs.
*/

package main

import (
	"fmt"
	"os"
)

// Config carries the command-line session options everywhere.
type Config struct {
	Dir          string
	GUI          bool
	Scale        int
	LimitFPS     bool
	BIOS         string
	FullVRAM     bool
	Frames       int
	Script       string
	AudioBackend int
}

// windowHost creates the OS window hosting Vulkan presentation. Platform
// packages register one from an init function; without one, PlayStation
// titles can only run headless.
var windowHost func(title string, width, height int) (WindowSurface, error)

// SoftwareVRAMCore is implemented by PS1 cores that expose raw VRAM
// bytes, enabling the software blit path for headless runs.
type SoftwareVRAMCore interface {
	VRAMBytes() []byte
}

// buildCore loads a ROM and constructs its registered core.
func buildCore(path string, cfg *Config) (EmulationCore, error) {
	rom, system, err := LoadROM(path)
	if err != nil {
		return nil, err
	}
	factory, err := LookupCore(system)
	if err != nil {
		return nil, err
	}
	var bios []byte
	if system == SystemPS1 {
		bios, err = LoadPS1BIOS(cfg.BIOS, path)
		if err != nil {
			return nil, err
		}
	}
	return factory(rom, bios)
}

// runROM builds the core for a ROM and runs it to completion.
func runROM(path string, cfg *Config) error {
	core, err := buildCore(path, cfg)
	if err != nil {
		return err
	}

	var lua *LuaAutomation
	if cfg.Script != "" {
		lua, err = NewLuaAutomation(cfg.Script)
		if err != nil {
			return err
		}
		defer lua.Close()
	}

	switch c := core.(type) {
	case PS1Core:
		return runPS1(c, cfg, lua)
	case FramebufferCore:
		return runEbitenSession(c, cfg, path, lua)
	}
	return fmt.Errorf("core for %s supports no presentation path", path)
}

// displayRegionFor applies the -full-vram debug override: instead of the
// scanned-out display window, blit the entire VRAM as 16-bit texels.
func displayRegionFor(core PS1Core, fullVRAM bool) (BlitRegion, bool) {
	if fullVRAM {
		return BlitRegion{
			Size:   [2]uint32{vramWidthWords, vramHeight},
			Extent: [2]uint32{vramWidthWords, vramHeight},
		}, false
	}
	return core.DisplayRegion()
}

func runPS1(core PS1Core, cfg *Config, lua *LuaAutomation) error {
	if windowHost == nil {
		return runPS1Headless(core, cfg, lua)
	}

	window, err := windowHost("arcadia", 1024*cfg.Scale/2, 512*cfg.Scale/2)
	if err != nil {
		return err
	}
	ctx, err := NewVulkanContext(window.InstanceExtensions())
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	// Debug VRAM view is a plain region override, so wrap the core.
	var sessionCore PS1Core = core
	if cfg.FullVRAM {
		sessionCore = fullVRAMCore{core}
	}

	presenter, err := newVulkanPresenter(ctx, window, sessionCore)
	if err != nil {
		return err
	}
	defer presenter.Destroy()

	audio, err := NewAudioSink(cfg.AudioBackend)
	if err != nil {
		return err
	}
	defer audio.Close()
	if err := audio.Start(); err != nil {
		return err
	}

	latch := NewInputLatch()
	if src, ok := window.(InputSource); ok {
		latch.AddSource(src)
	}
	if lua != nil {
		latch.AddSource(lua)
	}

	var pacer *framePacer
	if cfg.LimitFPS {
		pacer = newFramePacer(core.RefreshRate())
	}

	session := NewPS1Session(sessionCore, presenter, audio, latch, pacer)
	return driveFrames(cfg, lua, window.PollEvents, session.RunFrame)
}

// runPS1Headless renders through the software blit so scripted runs work
// on machines with no GPU or display.
func runPS1Headless(core PS1Core, cfg *Config, lua *LuaAutomation) error {
	vramCore, ok := core.(SoftwareVRAMCore)
	if !ok {
		return fmt.Errorf("no window host is linked in and the PS1 core exposes no raw VRAM for software presentation")
	}

	audio := newHeadlessAudioSink()
	latch := NewInputLatch()
	if lua != nil {
		latch.AddSource(lua)
	}
	var pacer *framePacer
	if cfg.LimitFPS {
		pacer = newFramePacer(core.RefreshRate())
	}

	blitter := NewSoftwareFrontBlit()
	dst := newPixelImage(640, 480)

	frame := func() error {
		latch.Forward(core)
		if st := core.AdvanceVideoFrame(); st != CoreStatusNormal {
			fmt.Fprintf(os.Stderr, "ps1: core reported %v after frame advance\n", st)
		}
		audio.Submit(core.TakeAudioSamples())
		region, is24bit := displayRegionFor(core, cfg.FullVRAM)
		blitter.Blit(blitSourceFor(region, is24bit), vramCore.VRAMBytes(), dst)
		if pacer != nil {
			pacer.Wait()
		}
		return nil
	}
	return driveFrames(cfg, lua, func() bool { return false }, frame)
}

// driveFrames runs the per-frame closure until the window closes, the
// automation script quits, or the -frames budget runs out.
func driveFrames(cfg *Config, lua *LuaAutomation, closed func() bool, frame func() error) error {
	for n := 0; ; n++ {
		if cfg.Frames > 0 && n >= cfg.Frames {
			return nil
		}
		if closed() {
			return nil
		}
		if err := frame(); err != nil {
			return err
		}
		if lua != nil {
			if err := lua.OnFrame(); err != nil {
				if err == errAutomationDone {
					return nil
				}
				return err
			}
		}
	}
}

// fullVRAMCore overrides DisplayRegion with the whole-VRAM debug view.
type fullVRAMCore struct {
	PS1Core
}

func (c fullVRAMCore) DisplayRegion() (BlitRegion, bool) {
	return displayRegionFor(c.PS1Core, true)
}
