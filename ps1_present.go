// ps1_present.go - PlayStation presentation loop

/*
Per-frame orchestration for the PlayStation path. The order of operations
is fixed: acquire a swapchain target first, only then advance the core,
drain its audio, and blit. Acquiring first means a dead swapchain (resize,
minimize) costs nothing; the frame is skipped outright, emulation does not
advance, and the swapchain is rebuilt before the next acquire.

The loop talks to the GPU side through framePresenter so the sequencing
rules are testable without a device.
*/

package main

import (
	"fmt"
	"os"

	vk "github.com/goki/vulkan"
)

// framePresenter is the loop's view of the swapchain + blit machinery.
type framePresenter interface {
	// Stale reports whether the presentable surface must be rebuilt
	// before the next acquire.
	Stale() bool

	// Rebuild recreates the presentable surface at the current drawable
	// size.
	Rebuild() error

	// SyncPrevious blocks until the previous frame's GPU work retires and
	// its transients are released. Must complete before AcquireTarget:
	// the old submission holds a wait operation on the acquire semaphore
	// until then, and the semaphore may not be re-armed while that wait
	// is pending.
	SyncPrevious() error

	// AcquireTarget obtains the next presentable target. swapStale means
	// nothing was acquired and the frame must be skipped.
	AcquireTarget() (target uint32, status swapchainStatus, err error)

	// PresentFrame blits the source into the target and queues it for
	// display.
	PresentFrame(src blitSource, target uint32) (swapchainStatus, error)
}

// PS1Session runs one PlayStation core against the Vulkan presentation
// pipeline.
type PS1Session struct {
	core      PS1Core
	presenter framePresenter
	audio     AudioSink
	input     *InputLatch
	pacer     *framePacer
}

// NewPS1Session wires a core to its presenter and peripherals. Pass a nil
// pacer to run uncapped.
func NewPS1Session(core PS1Core, presenter framePresenter, audio AudioSink, input *InputLatch, pacer *framePacer) *PS1Session {
	return &PS1Session{
		core:      core,
		presenter: presenter,
		audio:     audio,
		input:     input,
		pacer:     pacer,
	}
}

// RunFrame performs one iteration of the presentation loop. A skipped
// frame (stale swapchain) returns nil; the next call rebuilds and
// continues. Errors are GPU faults and end the session.
func (s *PS1Session) RunFrame() error {
	if s.presenter.Stale() {
		if err := s.presenter.Rebuild(); err != nil {
			return err
		}
	}

	if err := s.presenter.SyncPrevious(); err != nil {
		return err
	}

	target, status, err := s.presenter.AcquireTarget()
	if err != nil {
		return err
	}
	if status == swapStale {
		// No target this frame. Emulation deliberately does not advance:
		// a minimized window pauses the game rather than running it dark.
		return nil
	}

	s.input.Forward(s.core)

	if st := s.core.AdvanceVideoFrame(); st != CoreStatusNormal {
		fmt.Fprintf(os.Stderr, "ps1: core reported %v after frame advance\n", st)
	}
	s.audio.Submit(s.core.TakeAudioSamples())

	region, is24bit := s.core.DisplayRegion()
	if _, err := s.presenter.PresentFrame(blitSourceFor(region, is24bit), target); err != nil {
		return err
	}

	if s.pacer != nil {
		s.pacer.Wait()
	}
	return nil
}

// vulkanPresenter is the real framePresenter: a swapchain plus the front
// blit pipeline, bound to a window surface.
type vulkanPresenter struct {
	ctx        *VulkanContext
	window     WindowSurface
	surface    vk.Surface
	swapchain  *Swapchain
	blitter    *FrontBlit
	acquireSem vk.Semaphore
}

// newVulkanPresenter builds the full GPU presentation stack for a core's
// VRAM image.
func newVulkanPresenter(ctx *VulkanContext, window WindowSurface, core PS1Core) (*vulkanPresenter, error) {
	surface, err := window.CreateSurface(ctx.Instance)
	if err != nil {
		return nil, err
	}
	width, height := window.DrawableSize()
	swapchain, err := newSwapchain(ctx, surface, width, height)
	if err != nil {
		return nil, err
	}
	blitter, err := NewFrontBlit(ctx, core.VRAMImage(), swapchain.format)
	if err != nil {
		swapchain.Destroy()
		return nil, err
	}
	blitter.SetTargets(swapchain.views, swapchain.extent)
	acquireSem, err := ctx.createSemaphore()
	if err != nil {
		blitter.Destroy()
		swapchain.Destroy()
		return nil, err
	}
	return &vulkanPresenter{
		ctx:        ctx,
		window:     window,
		surface:    surface,
		swapchain:  swapchain,
		blitter:    blitter,
		acquireSem: acquireSem,
	}, nil
}

func (p *vulkanPresenter) Stale() bool { return p.swapchain.Stale() }

func (p *vulkanPresenter) Rebuild() error {
	width, height := p.window.DrawableSize()
	if err := p.swapchain.Recreate(width, height); err != nil {
		return err
	}
	p.blitter.SetTargets(p.swapchain.views, p.swapchain.extent)
	return nil
}

func (p *vulkanPresenter) SyncPrevious() error {
	return p.blitter.SyncPrevious()
}

func (p *vulkanPresenter) AcquireTarget() (uint32, swapchainStatus, error) {
	return p.swapchain.Acquire(p.acquireSem)
}

func (p *vulkanPresenter) PresentFrame(src blitSource, target uint32) (swapchainStatus, error) {
	future, err := p.blitter.Blit(src, target, p.acquireSem)
	if err != nil {
		return swapStale, err
	}
	return p.swapchain.Present(target, future.done)
}

func (p *vulkanPresenter) Destroy() {
	if p.blitter != nil {
		p.blitter.Destroy()
	}
	if p.acquireSem != vk.NullSemaphore {
		vk.DestroySemaphore(p.ctx.Device, p.acquireSem, nil)
	}
	if p.swapchain != nil {
		p.swapchain.Destroy()
	}
	if p.surface != vk.NullSurface {
		vk.DestroySurface(p.ctx.Instance, p.surface, nil)
	}
}
