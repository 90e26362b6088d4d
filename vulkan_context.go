// vulkan_context.go - Vulkan instance, device and resource helpers

/*
The PlayStation presentation pipeline talks to the GPU directly through
Vulkan. This file owns the boring-but-critical plumbing: instance and
device creation, queue/memory-type selection, and small helpers for
buffers, images and sync objects so the front blit code reads as intent
rather than as create-info soup.

All resources created here are allocated once at session setup; any
failure is fatal for the session (no retry, per the error taxonomy).
*/

package main

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// GPUError provides detailed error context for Vulkan operations.
type GPUError struct {
	Operation string // what was being attempted
	Details   string // additional context
	Err       error  // underlying error if any
}

func (e *GPUError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gpu %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("gpu %s failed: %s", e.Operation, e.Details)
}

func (e *GPUError) Unwrap() error { return e.Err }

// gpuErr wraps a non-success vk.Result into a GPUError. Returns nil on
// success so call sites can chain it directly.
func gpuErr(op string, ret vk.Result) error {
	if ret == vk.Success {
		return nil
	}
	return &GPUError{Operation: op, Err: vk.Error(ret)}
}

// VulkanContext bundles the per-session Vulkan handles every GPU component
// needs. It is created once at session start and destroyed at teardown;
// nothing in it is re-created per frame.
type VulkanContext struct {
	Instance    vk.Instance
	GPU         vk.PhysicalDevice
	Device      vk.Device
	Queue       vk.Queue
	QueueFamily uint32
	CommandPool vk.CommandPool

	memProps vk.PhysicalDeviceMemoryProperties
}

// NewVulkanContext initialises Vulkan and picks a graphics-capable queue.
// surfaceExts are the instance extensions the windowing collaborator needs
// for its surface (empty for headless use).
func NewVulkanContext(surfaceExts []string) (*VulkanContext, error) {
	if err := vk.Init(); err != nil {
		return nil, &GPUError{Operation: "loader init", Err: err}
	}

	exts := make([]string, 0, len(surfaceExts))
	for _, e := range surfaceExts {
		exts = append(exts, terminated(e))
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   terminated("arcadia"),
			ApplicationVersion: vk.MakeVersion(0, 3, 0),
			PEngineName:        terminated("arcadia"),
			EngineVersion:      vk.MakeVersion(0, 3, 0),
			ApiVersion:         vk.ApiVersion11,
		},
		EnabledExtensionCount:   uint32(len(exts)),
		PpEnabledExtensionNames: exts,
	}, nil, &instance)
	if err := gpuErr("instance creation", ret); err != nil {
		return nil, err
	}
	vk.InitInstance(instance)

	ctx := &VulkanContext{Instance: instance}
	if err := ctx.pickDevice(len(surfaceExts) > 0); err != nil {
		vk.DestroyInstance(instance, nil)
		return nil, err
	}
	return ctx, nil
}

func (c *VulkanContext) pickDevice(wantPresent bool) error {
	var gpuCount uint32
	if err := gpuErr("device enumeration", vk.EnumeratePhysicalDevices(c.Instance, &gpuCount, nil)); err != nil {
		return err
	}
	if gpuCount == 0 {
		return &GPUError{Operation: "device enumeration", Details: "no Vulkan-capable device present"}
	}
	gpus := make([]vk.PhysicalDevice, gpuCount)
	if err := gpuErr("device enumeration", vk.EnumeratePhysicalDevices(c.Instance, &gpuCount, gpus)); err != nil {
		return err
	}
	// First device with a graphics queue wins. Good enough for a blit
	// pipeline; there is no workload here worth device scoring.
	for _, gpu := range gpus {
		var famCount uint32
		vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &famCount, nil)
		fams := make([]vk.QueueFamilyProperties, famCount)
		vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &famCount, fams)
		for i := range fams {
			fams[i].Deref()
			if fams[i].QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) == 0 {
				continue
			}
			c.GPU = gpu
			c.QueueFamily = uint32(i)
			return c.createDevice(wantPresent)
		}
	}
	return &GPUError{Operation: "device selection", Details: "no device exposes a graphics queue"}
}

func (c *VulkanContext) createDevice(wantPresent bool) error {
	var devExts []string
	if wantPresent {
		devExts = []string{terminated("VK_KHR_swapchain")}
	}
	var device vk.Device
	ret := vk.CreateDevice(c.GPU, &vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: c.QueueFamily,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}},
		EnabledExtensionCount:   uint32(len(devExts)),
		PpEnabledExtensionNames: devExts,
	}, nil, &device)
	if err := gpuErr("device creation", ret); err != nil {
		return err
	}
	c.Device = device
	vk.GetDeviceQueue(device, c.QueueFamily, 0, &c.Queue)

	vk.GetPhysicalDeviceMemoryProperties(c.GPU, &c.memProps)
	c.memProps.Deref()

	var pool vk.CommandPool
	ret = vk.CreateCommandPool(device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: c.QueueFamily,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if err := gpuErr("command pool creation", ret); err != nil {
		vk.DestroyDevice(device, nil)
		return err
	}
	c.CommandPool = pool
	return nil
}

// Destroy waits for the device to go idle and releases every handle. The
// caller must have drained the last in-flight future first; the idle wait
// is the backstop, not the mechanism.
func (c *VulkanContext) Destroy() {
	if c.Device != nil {
		vk.DeviceWaitIdle(c.Device)
		if c.CommandPool != vk.NullCommandPool {
			vk.DestroyCommandPool(c.Device, c.CommandPool, nil)
		}
		vk.DestroyDevice(c.Device, nil)
		c.Device = nil
	}
	if c.Instance != nil {
		vk.DestroyInstance(c.Instance, nil)
		c.Instance = nil
	}
}

// findMemoryType picks a memory type index compatible with typeBits that
// has all the requested property flags.
func (c *VulkanContext) findMemoryType(typeBits uint32, props vk.MemoryPropertyFlags) (uint32, error) {
	for i := uint32(0); i < c.memProps.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		c.memProps.MemoryTypes[i].Deref()
		if c.memProps.MemoryTypes[i].PropertyFlags&props == props {
			return i, nil
		}
	}
	return 0, &GPUError{Operation: "memory type selection",
		Details: fmt.Sprintf("no memory type matches bits %#x props %#x", typeBits, props)}
}

// deviceBuffer is a buffer plus its backing allocation. Exclusively owned
// by whichever component created it.
type deviceBuffer struct {
	Buffer vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

func (c *VulkanContext) createBuffer(size vk.DeviceSize, usage vk.BufferUsageFlags, props vk.MemoryPropertyFlags) (deviceBuffer, error) {
	var buf vk.Buffer
	ret := vk.CreateBuffer(c.Device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buf)
	if err := gpuErr("buffer creation", ret); err != nil {
		return deviceBuffer{}, err
	}

	var req vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(c.Device, buf, &req)
	req.Deref()
	memType, err := c.findMemoryType(req.MemoryTypeBits, props)
	if err != nil {
		vk.DestroyBuffer(c.Device, buf, nil)
		return deviceBuffer{}, err
	}

	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(c.Device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memType,
	}, nil, &mem)
	if err := gpuErr("buffer memory allocation", ret); err != nil {
		vk.DestroyBuffer(c.Device, buf, nil)
		return deviceBuffer{}, err
	}
	if err := gpuErr("buffer memory bind", vk.BindBufferMemory(c.Device, buf, mem, 0)); err != nil {
		vk.FreeMemory(c.Device, mem, nil)
		vk.DestroyBuffer(c.Device, buf, nil)
		return deviceBuffer{}, err
	}
	return deviceBuffer{Buffer: buf, Memory: mem, Size: size}, nil
}

func (c *VulkanContext) destroyBuffer(b deviceBuffer) {
	if b.Buffer != vk.NullBuffer {
		vk.DestroyBuffer(c.Device, b.Buffer, nil)
	}
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(c.Device, b.Memory, nil)
	}
}

// deviceImage is a 2D image plus its backing allocation.
type deviceImage struct {
	Image  vk.Image
	Memory vk.DeviceMemory
	Format vk.Format
	Width  uint32
	Height uint32
}

func (c *VulkanContext) createImage2D(width, height uint32, format vk.Format, usage vk.ImageUsageFlags) (deviceImage, error) {
	var img vk.Image
	ret := vk.CreateImage(c.Device, &vk.ImageCreateInfo{
		SType:         vk.StructureTypeImageCreateInfo,
		ImageType:     vk.ImageType2d,
		Format:        format,
		Extent:        vk.Extent3D{Width: width, Height: height, Depth: 1},
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}, nil, &img)
	if err := gpuErr("image creation", ret); err != nil {
		return deviceImage{}, err
	}

	var req vk.MemoryRequirements
	vk.GetImageMemoryRequirements(c.Device, img, &req)
	req.Deref()
	memType, err := c.findMemoryType(req.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		vk.DestroyImage(c.Device, img, nil)
		return deviceImage{}, err
	}

	var mem vk.DeviceMemory
	ret = vk.AllocateMemory(c.Device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  req.Size,
		MemoryTypeIndex: memType,
	}, nil, &mem)
	if err := gpuErr("image memory allocation", ret); err != nil {
		vk.DestroyImage(c.Device, img, nil)
		return deviceImage{}, err
	}
	if err := gpuErr("image memory bind", vk.BindImageMemory(c.Device, img, mem, 0)); err != nil {
		vk.FreeMemory(c.Device, mem, nil)
		vk.DestroyImage(c.Device, img, nil)
		return deviceImage{}, err
	}
	return deviceImage{Image: img, Memory: mem, Format: format, Width: width, Height: height}, nil
}

func (c *VulkanContext) destroyImage(i deviceImage) {
	if i.Image != vk.NullImage {
		vk.DestroyImage(c.Device, i.Image, nil)
	}
	if i.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(c.Device, i.Memory, nil)
	}
}

func (c *VulkanContext) createSemaphore() (vk.Semaphore, error) {
	var sem vk.Semaphore
	ret := vk.CreateSemaphore(c.Device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &sem)
	return sem, gpuErr("semaphore creation", ret)
}

func (c *VulkanContext) createFence(signaled bool) (vk.Fence, error) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	ret := vk.CreateFence(c.Device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: flags,
	}, nil, &fence)
	return fence, gpuErr("fence creation", ret)
}

func (c *VulkanContext) allocateCommandBuffer() (vk.CommandBuffer, error) {
	cmds := make([]vk.CommandBuffer, 1)
	ret := vk.AllocateCommandBuffers(c.Device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        c.CommandPool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}, cmds)
	if err := gpuErr("command buffer allocation", ret); err != nil {
		return nil, err
	}
	return cmds[0], nil
}

func (c *VulkanContext) freeCommandBuffer(cmd vk.CommandBuffer) {
	if cmd != nil {
		vk.FreeCommandBuffers(c.Device, c.CommandPool, 1, []vk.CommandBuffer{cmd})
	}
}

// terminated appends the NUL byte the C side of the binding expects on
// every string.
func terminated(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\x00' {
		return s
	}
	return s + "\x00"
}
