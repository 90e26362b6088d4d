// ps1_present_test.go - Sequencing tests for the presentation loop

package main

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
)

// fakePS1Core records how the loop drives it.
type fakePS1Core struct {
	advances int
	region   BlitRegion
	is24bit  bool
	status   CoreStatus
	samples  []float32
	buttons  map[Button]bool
}

func newFakePS1Core() *fakePS1Core {
	return &fakePS1Core{
		region: BlitRegion{
			Size:   [2]uint32{320, 240},
			Extent: [2]uint32{vramWidthWords, vramHeight},
		},
		buttons: map[Button]bool{},
	}
}

func (c *fakePS1Core) AdvanceVideoFrame() CoreStatus {
	c.advances++
	return c.status
}

func (c *fakePS1Core) TakeAudioSamples() []float32 {
	s := c.samples
	c.samples = nil
	return s
}

func (c *fakePS1Core) SetButtonState(b Button, pressed bool) { c.buttons[b] = pressed }
func (c *fakePS1Core) VRAMImage() vk.Image                   { return vk.NullImage }
func (c *fakePS1Core) DisplayRegion() (BlitRegion, bool)     { return c.region, c.is24bit }
func (c *fakePS1Core) RefreshRate() float64                  { return 59.94 }

// fakePresenter scripts acquire results and records the call sequence.
type fakePresenter struct {
	acquireScript []swapchainStatus
	stale         bool
	rebuilds      int
	syncs         int
	presented     []blitSource
	calls         []string
}

func (p *fakePresenter) Stale() bool { return p.stale }

func (p *fakePresenter) SyncPrevious() error {
	p.syncs++
	p.calls = append(p.calls, "sync")
	return nil
}

func (p *fakePresenter) Rebuild() error {
	p.rebuilds++
	p.stale = false
	p.calls = append(p.calls, "rebuild")
	return nil
}

func (p *fakePresenter) AcquireTarget() (uint32, swapchainStatus, error) {
	p.calls = append(p.calls, "acquire")
	status := swapOK
	if len(p.acquireScript) > 0 {
		status = p.acquireScript[0]
		p.acquireScript = p.acquireScript[1:]
	}
	if status == swapStale {
		p.stale = true
	}
	return 0, status, nil
}

func (p *fakePresenter) PresentFrame(src blitSource, target uint32) (swapchainStatus, error) {
	p.calls = append(p.calls, "present")
	p.presented = append(p.presented, src)
	return swapOK, nil
}

func newTestSession(core *fakePS1Core, presenter *fakePresenter) *PS1Session {
	return NewPS1Session(core, presenter, newHeadlessAudioSink(), NewInputLatch(), nil)
}

func TestPS1Session_NormalFramePresentsAfterAdvance(t *testing.T) {
	core := newFakePS1Core()
	presenter := &fakePresenter{}
	s := newTestSession(core, presenter)

	if err := s.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	if core.advances != 1 {
		t.Errorf("core advanced %d times, want 1", core.advances)
	}
	if len(presenter.presented) != 1 {
		t.Fatalf("presented %d frames, want 1", len(presenter.presented))
	}
}

func TestPS1Session_StaleAcquireSkipsEmulation(t *testing.T) {
	core := newFakePS1Core()
	presenter := &fakePresenter{acquireScript: []swapchainStatus{swapStale}}
	s := newTestSession(core, presenter)

	if err := s.RunFrame(); err != nil {
		t.Fatalf("RunFrame: %v", err)
	}
	if core.advances != 0 {
		t.Errorf("core advanced on a skipped frame (%d times)", core.advances)
	}
	if len(presenter.presented) != 0 {
		t.Error("presented a frame without a target")
	}
}

func TestPS1Session_RebuildHappensBeforeNextAcquire(t *testing.T) {
	core := newFakePS1Core()
	presenter := &fakePresenter{acquireScript: []swapchainStatus{swapStale, swapOK}}
	s := newTestSession(core, presenter)

	if err := s.RunFrame(); err != nil { // stale: skip
		t.Fatalf("frame 1: %v", err)
	}
	if err := s.RunFrame(); err != nil { // rebuild, then run normally
		t.Fatalf("frame 2: %v", err)
	}

	if presenter.rebuilds != 1 {
		t.Fatalf("rebuilt %d times, want 1", presenter.rebuilds)
	}
	want := []string{"sync", "acquire", "rebuild", "sync", "acquire", "present"}
	if len(presenter.calls) != len(want) {
		t.Fatalf("call sequence %v, want %v", presenter.calls, want)
	}
	for i := range want {
		if presenter.calls[i] != want[i] {
			t.Fatalf("call sequence %v, want %v", presenter.calls, want)
		}
	}
	if core.advances != 1 {
		t.Errorf("core advanced %d times across skip+recovery, want 1", core.advances)
	}
}

func TestPS1Session_DrainsPreviousFrameBeforeAcquire(t *testing.T) {
	// The acquire semaphore may only be re-armed once the prior frame's
	// submission (which waits on it) has fully retired, so every acquire
	// must be preceded by a sync.
	core := newFakePS1Core()
	presenter := &fakePresenter{}
	s := newTestSession(core, presenter)

	for frame := 0; frame < 3; frame++ {
		if err := s.RunFrame(); err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
	}

	for i, call := range presenter.calls {
		if call != "acquire" {
			continue
		}
		if i == 0 || presenter.calls[i-1] != "sync" {
			t.Fatalf("acquire at position %d not preceded by sync: %v", i, presenter.calls)
		}
	}
	if presenter.syncs != 3 {
		t.Errorf("synced %d times over 3 frames, want 3", presenter.syncs)
	}
}

func TestVulkanPresenter_RefusesHeadlessSurface(t *testing.T) {
	// A headless host has no presentable surface; presenter construction
	// must fail on surface creation, before any device work.
	_, err := newVulkanPresenter(&VulkanContext{}, newHeadlessSurface(640, 480), newFakePS1Core())
	if err == nil {
		t.Fatal("presenter built against a headless surface")
	}
	var gerr *GPUError
	if !errors.As(err, &gerr) {
		t.Fatalf("error is %T, want *GPUError", err)
	}
	if gerr.Operation != "surface creation" {
		t.Errorf("error operation %q, want %q", gerr.Operation, "surface creation")
	}
}

func TestPS1Session_SourceVariantTracksDisplayDepth(t *testing.T) {
	core := newFakePS1Core()
	presenter := &fakePresenter{}
	s := newTestSession(core, presenter)

	if err := s.RunFrame(); err != nil {
		t.Fatal(err)
	}
	core.is24bit = true
	core.region.Extent = [2]uint32{vramWidth24bpp, vramHeight}
	if err := s.RunFrame(); err != nil {
		t.Fatal(err)
	}

	if _, ok := presenter.presented[0].(blitSource16); !ok {
		t.Errorf("frame 1 source is %T, want blitSource16", presenter.presented[0])
	}
	if _, ok := presenter.presented[1].(blitSource24); !ok {
		t.Errorf("frame 2 source is %T, want blitSource24", presenter.presented[1])
	}
}

func TestPS1Session_AudioDrainedEveryPresentedFrame(t *testing.T) {
	core := newFakePS1Core()
	core.samples = []float32{0.1, -0.1, 0.2, -0.2}
	presenter := &fakePresenter{}
	audio := newHeadlessAudioSink()
	s := NewPS1Session(core, presenter, audio, NewInputLatch(), nil)

	if err := s.RunFrame(); err != nil {
		t.Fatal(err)
	}
	if got := audio.Buffered(); got != 4 {
		t.Errorf("audio sink holds %d samples, want 4", got)
	}
	if core.samples != nil {
		t.Error("core samples not drained")
	}
}
