// vulkan_future.go - Tracking of in-flight GPU work

package main

import (
	"time"

	vk "github.com/goki/vulkan"
)

// gpuFuture tracks one submitted batch of GPU work: the fence that marks
// its completion, the semaphore chained into presentation, and the
// transient resources (command buffer, staging buffers) that may only be
// reclaimed once the fence signals.
//
// The presentation pipeline keeps at most one of these in flight. A new
// frame first waits out and recycles the previous future, so VRAM
// staging resources are never aliased between frames.
type gpuFuture struct {
	ctx      *VulkanContext
	fence    vk.Fence
	done     vk.Semaphore
	cmd      vk.CommandBuffer
	cleanups []func()
}

func newGPUFuture(ctx *VulkanContext) (*gpuFuture, error) {
	fence, err := ctx.createFence(false)
	if err != nil {
		return nil, err
	}
	done, err := ctx.createSemaphore()
	if err != nil {
		vk.DestroyFence(ctx.Device, fence, nil)
		return nil, err
	}
	return &gpuFuture{ctx: ctx, fence: fence, done: done}, nil
}

// attach registers a cleanup to run once the work completes. Used for
// per-frame transients such as the 24-bit staging buffers.
func (f *gpuFuture) attach(cleanup func()) {
	f.cleanups = append(f.cleanups, cleanup)
}

// wait blocks until the tracked work finishes, then releases the command
// buffer and all attached transients. Safe to call on a future that was
// never submitted (nil cmd).
func (f *gpuFuture) wait() error {
	if f.cmd != nil {
		ret := vk.WaitForFences(f.ctx.Device, 1, []vk.Fence{f.fence}, vk.True,
			uint64(time.Second.Nanoseconds()))
		if err := gpuErr("fence wait", ret); err != nil {
			return err
		}
		vk.ResetFences(f.ctx.Device, 1, []vk.Fence{f.fence})
		f.ctx.freeCommandBuffer(f.cmd)
		f.cmd = nil
	}
	for _, cleanup := range f.cleanups {
		cleanup()
	}
	f.cleanups = nil
	return nil
}

// destroy releases the future after waiting out any in-flight work.
func (f *gpuFuture) destroy() {
	_ = f.wait()
	if f.done != vk.NullSemaphore {
		vk.DestroySemaphore(f.ctx.Device, f.done, nil)
		f.done = vk.NullSemaphore
	}
	if f.fence != vk.NullFence {
		vk.DestroyFence(f.ctx.Device, f.fence, nil)
		f.fence = vk.NullFence
	}
}
