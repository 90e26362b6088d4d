// vulkan_swapchain.go - Swapchain lifecycle and acquire/present results

/*
The swapchain is the one Vulkan object the outside world invalidates at
will: resizes, minimize, compositor changes. Everything here funnels that
into a single notion of staleness. Acquire and Present report swapStale
instead of surfacing ErrorOutOfDate to callers; the presentation loop
then rebuilds at a safe point before the next acquire.
*/

package main

import (
	vk "github.com/goki/vulkan"
)

type swapchainStatus int

const (
	swapOK swapchainStatus = iota
	swapStale
)

// Swapchain owns the presentable images and their views for one surface.
type Swapchain struct {
	ctx     *VulkanContext
	surface vk.Surface

	handle vk.Swapchain
	format vk.Format
	space  vk.ColorSpace
	extent vk.Extent2D
	images []vk.Image
	views  []vk.ImageView

	stale bool
}

// newSwapchain creates the initial swapchain for a surface at the given
// drawable size.
func newSwapchain(ctx *VulkanContext, surface vk.Surface, width, height uint32) (*Swapchain, error) {
	sc := &Swapchain{ctx: ctx, surface: surface}
	if err := sc.build(width, height, vk.NullSwapchain); err != nil {
		return nil, err
	}
	return sc, nil
}

func (sc *Swapchain) build(width, height uint32, old vk.Swapchain) error {
	dev := sc.ctx.Device

	var caps vk.SurfaceCapabilities
	ret := vk.GetPhysicalDeviceSurfaceCapabilities(sc.ctx.GPU, sc.surface, &caps)
	if err := gpuErr("surface capability query", ret); err != nil {
		return err
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()

	extent := caps.CurrentExtent
	if extent.Width == 0xFFFFFFFF { // surface leaves the size to us
		extent = vk.Extent2D{Width: clampU32(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
			Height: clampU32(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height)}
	}

	format, space, err := sc.pickFormat()
	if err != nil {
		return err
	}

	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}

	var handle vk.Swapchain
	ret = vk.CreateSwapchain(dev, &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          sc.surface,
		MinImageCount:    imageCount,
		ImageFormat:      format,
		ImageColorSpace:  space,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentModeFifo, // vsync; frame pacing handles the rest
		Clipped:          vk.True,
		OldSwapchain:     old,
	}, nil, &handle)
	if err := gpuErr("swapchain creation", ret); err != nil {
		return err
	}
	if old != vk.NullSwapchain {
		vk.DestroySwapchain(dev, old, nil)
	}

	sc.handle = handle
	sc.format = format
	sc.space = space
	sc.extent = extent
	sc.stale = false

	var count uint32
	if err := gpuErr("swapchain image query", vk.GetSwapchainImages(dev, handle, &count, nil)); err != nil {
		return err
	}
	sc.images = make([]vk.Image, count)
	if err := gpuErr("swapchain image query", vk.GetSwapchainImages(dev, handle, &count, sc.images)); err != nil {
		return err
	}

	sc.views = make([]vk.ImageView, count)
	for i, img := range sc.images {
		ret := vk.CreateImageView(dev, &vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vk.ImageViewType2d,
			Format:   format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}, nil, &sc.views[i])
		if err := gpuErr("swapchain view creation", ret); err != nil {
			return err
		}
	}
	return nil
}

func (sc *Swapchain) pickFormat() (vk.Format, vk.ColorSpace, error) {
	var count uint32
	ret := vk.GetPhysicalDeviceSurfaceFormats(sc.ctx.GPU, sc.surface, &count, nil)
	if err := gpuErr("surface format query", ret); err != nil {
		return 0, 0, err
	}
	formats := make([]vk.SurfaceFormat, count)
	ret = vk.GetPhysicalDeviceSurfaceFormats(sc.ctx.GPU, sc.surface, &count, formats)
	if err := gpuErr("surface format query", ret); err != nil {
		return 0, 0, err
	}
	for i := range formats {
		formats[i].Deref()
		// The most widely supported swapchain format; prefer it when offered.
		if formats[i].Format == vk.FormatB8g8r8a8Unorm {
			return formats[i].Format, formats[i].ColorSpace, nil
		}
	}
	if count == 0 {
		return 0, 0, &GPUError{Operation: "surface format query", Details: "surface exposes no formats"}
	}
	return formats[0].Format, formats[0].ColorSpace, nil
}

// MarkStale flags the swapchain for rebuild before the next acquire.
// Called on resize events and on suboptimal/out-of-date results.
func (sc *Swapchain) MarkStale() { sc.stale = true }

// Stale reports whether the swapchain must be rebuilt before use.
func (sc *Swapchain) Stale() bool { return sc.stale }

// Recreate rebuilds the swapchain at the current drawable size, chaining
// the old handle so in-flight presents complete cleanly.
func (sc *Swapchain) Recreate(width, height uint32) error {
	vk.DeviceWaitIdle(sc.ctx.Device)
	sc.destroyViews()
	return sc.build(width, height, sc.handle)
}

// Acquire obtains the next presentable image index, signalling sem when
// the image is ready to render into. swapStale means no image was
// acquired and the swapchain needs a rebuild.
func (sc *Swapchain) Acquire(sem vk.Semaphore) (uint32, swapchainStatus, error) {
	var index uint32
	ret := vk.AcquireNextImage(sc.ctx.Device, sc.handle, ^uint64(0), sem, vk.NullFence, &index)
	switch ret {
	case vk.Success:
		return index, swapOK, nil
	case vk.Suboptimal:
		// Usable this frame, but rebuild before the next one.
		sc.stale = true
		return index, swapOK, nil
	case vk.ErrorOutOfDate:
		sc.stale = true
		return 0, swapStale, nil
	}
	return 0, swapStale, gpuErr("image acquire", ret)
}

// Present queues the image for display once wait signals.
func (sc *Swapchain) Present(index uint32, wait vk.Semaphore) (swapchainStatus, error) {
	ret := vk.QueuePresent(sc.ctx.Queue, &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{wait},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.handle},
		PImageIndices:      []uint32{index},
	})
	switch ret {
	case vk.Success:
		return swapOK, nil
	case vk.Suboptimal, vk.ErrorOutOfDate:
		sc.stale = true
		return swapStale, nil
	}
	return swapStale, gpuErr("queue present", ret)
}

func (sc *Swapchain) destroyViews() {
	for _, view := range sc.views {
		if view != vk.NullImageView {
			vk.DestroyImageView(sc.ctx.Device, view, nil)
		}
	}
	sc.views = nil
}

// Destroy releases the swapchain and its views. The surface belongs to
// the windowing host and is not destroyed here.
func (sc *Swapchain) Destroy() {
	sc.destroyViews()
	if sc.handle != vk.NullSwapchain {
		vk.DestroySwapchain(sc.ctx.Device, sc.handle, nil)
		sc.handle = vk.NullSwapchain
	}
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
