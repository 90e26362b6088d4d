// window_surface.go - Windowing collaborator contract

package main

import (
	vk "github.com/goki/vulkan"
)

// WindowSurface is the seam between the Vulkan presentation pipeline and
// whatever windowing layer hosts it. The pipeline never creates windows
// itself; it asks the host for a surface and for the drawable size when
// the swapchain needs (re)building.
type WindowSurface interface {
	// InstanceExtensions returns the Vulkan instance extensions the host
	// needs enabled to create its surface.
	InstanceExtensions() []string

	// CreateSurface creates the presentable surface against an instance
	// that had InstanceExtensions enabled.
	CreateSurface(instance vk.Instance) (vk.Surface, error)

	// DrawableSize returns the current drawable size in pixels. Consulted
	// on every swapchain rebuild, so it must track live resizes.
	DrawableSize() (width, height uint32)

	// Focused reports whether the window currently has input focus.
	Focused() bool

	// PollEvents pumps the host event loop once and reports whether the
	// user asked to close the window.
	PollEvents() (closed bool)
}

// headlessSurface satisfies WindowSurface for sessions with no window.
// Surface creation is refused, so a Vulkan presenter built against it
// fails fast; headless runs present through the software blit instead.
type headlessSurface struct {
	width  uint32
	height uint32
}

func newHeadlessSurface(width, height uint32) *headlessSurface {
	return &headlessSurface{width: width, height: height}
}

func (h *headlessSurface) InstanceExtensions() []string { return nil }

func (h *headlessSurface) CreateSurface(vk.Instance) (vk.Surface, error) {
	return vk.NullSurface, &GPUError{Operation: "surface creation",
		Details: "headless session has no presentable surface"}
}

func (h *headlessSurface) DrawableSize() (uint32, uint32) { return h.width, h.height }

func (h *headlessSurface) Focused() bool { return false }

func (h *headlessSurface) PollEvents() bool { return false }
