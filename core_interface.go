// core_interface.go - Emulation core collaborator contracts

/*
Arcadia is a front-end: the per-console CPU/PPU/APU emulation lives in
external core libraries. This file pins down the seam between those cores
and the presentation layer. A core advances in whole video frames, hands
back whatever audio it generated, and accepts button state changes. How a
core exposes its finished frame depends on the console: most cores hand
over a plain RGBA framebuffer (FramebufferCore), the PlayStation core owns
a Vulkan VRAM image and blits it itself (PS1Core).
*/

package main

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// CoreStatus is what a core reports after producing one video frame.
// Anything other than CoreStatusNormal is logged as a warning by the
// presentation loop; it is never fatal at this layer.
type CoreStatus int

const (
	CoreStatusNormal CoreStatus = iota
	CoreStatusStalled            // core made no forward progress this frame
	CoreStatusFault              // core hit an internal fault and recovered (or not)
)

func (s CoreStatus) String() string {
	switch s {
	case CoreStatusNormal:
		return "normal"
	case CoreStatusStalled:
		return "stalled"
	case CoreStatusFault:
		return "fault"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Button is the front-end's console-agnostic button identifier. Each core
// maps these onto its own pad layout; buttons a console does not have are
// ignored by that core.
type Button int

const (
	ButtonUp Button = iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonCross    // A on Nintendo pads
	ButtonCircle   // B
	ButtonSquare   // X
	ButtonTriangle // Y
	ButtonL1
	ButtonL2
	ButtonR1
	ButtonR2
	ButtonStart
	ButtonSelect

	ButtonCount
)

func (b Button) String() string {
	names := [...]string{
		"up", "down", "left", "right",
		"cross", "circle", "square", "triangle",
		"l1", "l2", "r1", "r2",
		"start", "select",
	}
	if int(b) < len(names) {
		return names[b]
	}
	return fmt.Sprintf("button(%d)", int(b))
}

// EmulationCore is the minimal contract every console core satisfies.
type EmulationCore interface {
	// AdvanceVideoFrame runs emulation until one full field/frame of video
	// has been produced.
	AdvanceVideoFrame() CoreStatus

	// TakeAudioSamples drains and returns all interleaved-stereo samples
	// generated since the last call. Empty is valid.
	TakeAudioSamples() []float32

	// SetButtonState is called only on edge transitions (see InputLatch).
	SetButtonState(b Button, pressed bool)
}

// FramebufferCore is satisfied by cores that render into a plain RGBA
// buffer; these are presented through the ebiten texture-blit path.
type FramebufferCore interface {
	EmulationCore

	// Framebuffer returns the finished frame as tightly packed RGBA bytes
	// together with its dimensions. The slice is owned by the core and is
	// only valid until the next AdvanceVideoFrame call.
	Framebuffer() (pix []byte, width, height int)

	// RefreshRate returns the console's native field rate in Hz, used for
	// frame pacing.
	RefreshRate() float64
}

// PS1Core is satisfied by the PlayStation core: its video memory lives in
// a Vulkan image and the core cooperates with the front blit pipeline to
// get it on screen.
type PS1Core interface {
	EmulationCore

	// VRAMImage returns the core-owned 1024x512 VRAM image. Read-only to
	// the presentation pipeline; the core keeps it in General layout and
	// creates it so an A1R5G5B5 sampled view over it is legal.
	VRAMImage() vk.Image

	// DisplayRegion describes the currently scanned-out sub-rectangle of
	// VRAM and whether the display is in 24-bit color depth this frame.
	DisplayRegion() (region BlitRegion, is24bit bool)

	// RefreshRate returns the native field rate (50 or ~59.94 Hz).
	RefreshRate() float64
}

// CoreFactory builds a core for a loaded ROM. BIOS is empty for consoles
// that need none.
type CoreFactory func(rom []byte, bios []byte) (EmulationCore, error)

var coreRegistry = map[GameSystem]CoreFactory{}

// RegisterCore installs a core factory for a system. Cores are external
// collaborators; linking one in and calling RegisterCore from an init
// function is all the wiring required.
func RegisterCore(system GameSystem, factory CoreFactory) {
	coreRegistry[system] = factory
}

// LookupCore returns the registered factory for a system.
func LookupCore(system GameSystem) (CoreFactory, error) {
	factory, ok := coreRegistry[system]
	if !ok {
		return nil, fmt.Errorf("no %s core is linked into this build", system)
	}
	return factory, nil
}
