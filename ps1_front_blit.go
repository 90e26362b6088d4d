// ps1_front_blit.go - PlayStation VRAM to swapchain blit pipeline

/*
The PlayStation core renders into a 1024x512 sixteen-bit VRAM image; this
pipeline gets the scanned-out display region of that VRAM onto a
swapchain image.

Two source paths feed one graphics pass:

  16-bit displays sample the VRAM image directly through a 1555 view;
  each VRAM word is one pixel.

  24-bit displays stage through a compute unpack first: VRAM bytes are
  copied into a storage buffer, the unpack kernel widens three-byte
  pixels into 32-bit pixels in a second buffer, and that is copied into
  a 682x512 texture the graphics pass samples instead.

The graphics pass itself is a four-vertex triangle strip covering the
whole target, with the display region mapped onto it by push constants
and sampled with nearest filtering.

Pipelines, buffers and the staging texture are built once. The sampled
source view, its descriptor set and the target framebuffer are created
fresh each Blit and handed to the frame's future, which destroys them
once the fence retires. One frame is in flight at a time.
*/

package main

import (
	"encoding/binary"
	"math"
	"unsafe"

	vk "github.com/goki/vulkan"
)

// blitSource selects which texture feeds the blit pass and how.
type blitSource interface {
	blitRegion() BlitRegion
}

// blitSource16 samples the VRAM image directly; Region.Extent is the raw
// 1024x512 VRAM size.
type blitSource16 struct{ Region BlitRegion }

// blitSource24 routes VRAM bytes through the unpack kernel; Region.Extent
// is the unpacked 682x512 image size.
type blitSource24 struct{ Region BlitRegion }

func (s blitSource16) blitRegion() BlitRegion { return s.Region }
func (s blitSource24) blitRegion() BlitRegion { return s.Region }

// blitSourceFor wraps a core-reported display region in the matching
// source variant.
func blitSourceFor(region BlitRegion, is24bit bool) blitSource {
	if is24bit {
		return blitSource24{Region: region}
	}
	return blitSource16{Region: region}
}

// Quad corners in NDC, triangle-strip order: bottom-left, top-left,
// bottom-right, top-right.
var blitQuad = [8]float32{
	-1, -1,
	-1, 1,
	1, -1,
	1, 1,
}

// FrontBlit owns the Vulkan state for presenting PlayStation VRAM.
type FrontBlit struct {
	ctx  *VulkanContext
	vram vk.Image

	renderPass vk.RenderPass
	sampler    vk.Sampler

	gfxSetLayout vk.DescriptorSetLayout
	gfxLayout    vk.PipelineLayout
	gfxPipeline  vk.Pipeline
	descPool     vk.DescriptorPool
	vertexBuf    deviceBuffer

	compSetLayout vk.DescriptorSetLayout
	compLayout    vk.PipelineLayout
	compPipeline  vk.Pipeline
	compSet       vk.DescriptorSet
	packedBuf     deviceBuffer // raw VRAM bytes, compute input
	unpackedBuf   deviceBuffer // widened pixels, compute output
	unpackedImage deviceImage  // 682x512 texture fed from unpackedBuf

	targetViews  []vk.ImageView
	targetExtent vk.Extent2D

	future *gpuFuture
}

// NewFrontBlit builds the full pipeline against a core-owned VRAM image.
// targetFormat is the swapchain image format the render pass writes.
func NewFrontBlit(ctx *VulkanContext, vram vk.Image, targetFormat vk.Format) (*FrontBlit, error) {
	fb := &FrontBlit{ctx: ctx, vram: vram}
	steps := []func(vk.Format) error{
		fb.createRenderPass,
		func(vk.Format) error { return fb.createSampler() },
		func(vk.Format) error { return fb.createVertexBuffer() },
		func(vk.Format) error { return fb.createUnpackResources() },
		func(vk.Format) error { return fb.createGraphicsPipeline() },
		func(vk.Format) error { return fb.createComputePipeline() },
		func(vk.Format) error { return fb.createDescriptorPool() },
		func(vk.Format) error { return fb.createFuture() },
	}
	for _, step := range steps {
		if err := step(targetFormat); err != nil {
			fb.Destroy()
			return nil, err
		}
	}
	return fb, nil
}

func (fb *FrontBlit) createRenderPass(format vk.Format) error {
	var rp vk.RenderPass
	ret := vk.CreateRenderPass(fb.ctx.Device, &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments: []vk.AttachmentDescription{{
			Format:  format,
			Samples: vk.SampleCount1Bit,
			// The quad covers every target pixel, so the previous contents
			// never survive anyway.
			LoadOp:         vk.AttachmentLoadOpDontCare,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		}},
		SubpassCount: 1,
		PSubpasses: []vk.SubpassDescription{{
			PipelineBindPoint:    vk.PipelineBindPointGraphics,
			ColorAttachmentCount: 1,
			PColorAttachments: []vk.AttachmentReference{{
				Attachment: 0,
				Layout:     vk.ImageLayoutColorAttachmentOptimal,
			}},
		}},
		DependencyCount: 1,
		PDependencies: []vk.SubpassDependency{{
			SrcSubpass:    vk.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
			DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		}},
	}, nil, &rp)
	fb.renderPass = rp
	return gpuErr("render pass creation", ret)
}

func (fb *FrontBlit) createSampler() error {
	// Nearest filtering keeps VRAM texels crisp; repeat addressing matches
	// the console's wrap-around scan-out behavior at region edges.
	var sampler vk.Sampler
	ret := vk.CreateSampler(fb.ctx.Device, &vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    vk.FilterNearest,
		MinFilter:    vk.FilterNearest,
		MipmapMode:   vk.SamplerMipmapModeNearest,
		AddressModeU: vk.SamplerAddressModeRepeat,
		AddressModeV: vk.SamplerAddressModeRepeat,
		AddressModeW: vk.SamplerAddressModeRepeat,
	}, nil, &sampler)
	fb.sampler = sampler
	return gpuErr("sampler creation", ret)
}

func (fb *FrontBlit) createVertexBuffer() error {
	buf, err := fb.ctx.createBuffer(vk.DeviceSize(len(blitQuad)*4),
		vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	fb.vertexBuf = buf

	raw := make([]byte, len(blitQuad)*4)
	for i, v := range blitQuad {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	var mapped unsafe.Pointer
	ret := vk.MapMemory(fb.ctx.Device, buf.Memory, 0, buf.Size, 0, &mapped)
	if err := gpuErr("vertex buffer map", ret); err != nil {
		return err
	}
	vk.Memcopy(mapped, raw)
	vk.UnmapMemory(fb.ctx.Device, buf.Memory)
	return nil
}

func (fb *FrontBlit) createUnpackResources() error {
	packed, err := fb.ctx.createBuffer(vk.DeviceSize(vramRowBytes*vramHeight),
		vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit|vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	fb.packedBuf = packed

	unpacked, err := fb.ctx.createBuffer(vk.DeviceSize(vramWidth24bpp*vramHeight*4),
		vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit|vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return err
	}
	fb.unpackedBuf = unpacked

	// B8G8R8A8, not R8G8B8A8: the unpack kernel writes bytes r,g,b,FF per
	// pixel, so a BGRA view reads red in the blue channel exactly like the
	// 1555 view over VRAM does. Both paths are then corrected by the same
	// R/B component swizzle on the sampled view.
	img, err := fb.ctx.createImage2D(vramWidth24bpp, vramHeight, vk.FormatB8g8r8a8Unorm,
		vk.ImageUsageFlags(vk.ImageUsageSampledBit|vk.ImageUsageTransferDstBit))
	if err != nil {
		return err
	}
	fb.unpackedImage = img
	return nil
}

func (fb *FrontBlit) createGraphicsPipeline() error {
	dev := fb.ctx.Device

	var setLayout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(dev, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		}},
	}, nil, &setLayout)
	if err := gpuErr("descriptor layout creation", ret); err != nil {
		return err
	}
	fb.gfxSetLayout = setLayout

	var layout vk.PipelineLayout
	ret = vk.CreatePipelineLayout(dev, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{setLayout},
		PushConstantRangeCount: 1,
		PPushConstantRanges: []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit),
			Offset:     0,
			Size:       blitPushConstantsSize,
		}},
	}, nil, &layout)
	if err := gpuErr("pipeline layout creation", ret); err != nil {
		return err
	}
	fb.gfxLayout = layout

	vert, err := fb.ctx.createShaderModule("blit.vert.spv")
	if err != nil {
		return err
	}
	defer vk.DestroyShaderModule(dev, vert, nil)
	frag, err := fb.ctx.createShaderModule("blit.frag.spv")
	if err != nil {
		return err
	}
	defer vk.DestroyShaderModule(dev, frag, nil)

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateGraphicsPipelines(dev, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{{
		SType:      vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount: 2,
		PStages: []vk.PipelineShaderStageCreateInfo{{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vert,
			PName:  terminated("main"),
		}, {
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: frag,
			PName:  terminated("main"),
		}},
		PVertexInputState: &vk.PipelineVertexInputStateCreateInfo{
			SType:                         vk.StructureTypePipelineVertexInputStateCreateInfo,
			VertexBindingDescriptionCount: 1,
			PVertexBindingDescriptions: []vk.VertexInputBindingDescription{{
				Binding:   0,
				Stride:    8,
				InputRate: vk.VertexInputRateVertex,
			}},
			VertexAttributeDescriptionCount: 1,
			PVertexAttributeDescriptions: []vk.VertexInputAttributeDescription{{
				Location: 0,
				Binding:  0,
				Format:   vk.FormatR32g32Sfloat,
				Offset:   0,
			}},
		},
		PInputAssemblyState: &vk.PipelineInputAssemblyStateCreateInfo{
			SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
			Topology: vk.PrimitiveTopologyTriangleStrip,
		},
		PViewportState: &vk.PipelineViewportStateCreateInfo{
			SType:         vk.StructureTypePipelineViewportStateCreateInfo,
			ViewportCount: 1,
			ScissorCount:  1,
		},
		PRasterizationState: &vk.PipelineRasterizationStateCreateInfo{
			SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
			PolygonMode: vk.PolygonModeFill,
			CullMode:    vk.CullModeFlags(vk.CullModeNone),
			FrontFace:   vk.FrontFaceCounterClockwise,
			LineWidth:   1,
		},
		PMultisampleState: &vk.PipelineMultisampleStateCreateInfo{
			SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
			RasterizationSamples: vk.SampleCount1Bit,
		},
		PColorBlendState: &vk.PipelineColorBlendStateCreateInfo{
			SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
			AttachmentCount: 1,
			PAttachments: []vk.PipelineColorBlendAttachmentState{{
				ColorWriteMask: vk.ColorComponentFlags(
					vk.ColorComponentRBit | vk.ColorComponentGBit |
						vk.ColorComponentBBit | vk.ColorComponentABit),
			}},
		},
		PDynamicState: &vk.PipelineDynamicStateCreateInfo{
			SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
			DynamicStateCount: 2,
			PDynamicStates:    []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
		},
		Layout:     layout,
		RenderPass: fb.renderPass,
	}}, nil, pipelines)
	if err := gpuErr("graphics pipeline creation", ret); err != nil {
		return err
	}
	fb.gfxPipeline = pipelines[0]
	return nil
}

func (fb *FrontBlit) createComputePipeline() error {
	dev := fb.ctx.Device

	var setLayout vk.DescriptorSetLayout
	ret := vk.CreateDescriptorSetLayout(dev, &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 2,
		PBindings: []vk.DescriptorSetLayoutBinding{{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		}, {
			Binding:         1,
			DescriptorType:  vk.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageComputeBit),
		}},
	}, nil, &setLayout)
	if err := gpuErr("compute descriptor layout creation", ret); err != nil {
		return err
	}
	fb.compSetLayout = setLayout

	var layout vk.PipelineLayout
	ret = vk.CreatePipelineLayout(dev, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{setLayout},
	}, nil, &layout)
	if err := gpuErr("compute pipeline layout creation", ret); err != nil {
		return err
	}
	fb.compLayout = layout

	comp, err := fb.ctx.createShaderModule("unpack24.comp.spv")
	if err != nil {
		return err
	}
	defer vk.DestroyShaderModule(dev, comp, nil)

	pipelines := make([]vk.Pipeline, 1)
	ret = vk.CreateComputePipelines(dev, vk.NullPipelineCache, 1, []vk.ComputePipelineCreateInfo{{
		SType: vk.StructureTypeComputePipelineCreateInfo,
		Stage: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageComputeBit,
			Module: comp,
			PName:  terminated("main"),
		},
		Layout: layout,
	}}, nil, pipelines)
	if err := gpuErr("compute pipeline creation", ret); err != nil {
		return err
	}
	fb.compPipeline = pipelines[0]
	return nil
}

// createDescriptorPool builds the pool and the one persistent set, for
// the compute buffers. The sampled-image sets are per-frame: they point
// at a per-frame view, so they are allocated in Blit and freed when the
// frame retires, which is what the free-descriptor-set pool flag is for.
func (fb *FrontBlit) createDescriptorPool() error {
	dev := fb.ctx.Device

	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(dev, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       3,
		PoolSizeCount: 2,
		PPoolSizes: []vk.DescriptorPoolSize{
			{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: 2},
			{Type: vk.DescriptorTypeStorageBuffer, DescriptorCount: 2},
		},
	}, nil, &pool)
	if err := gpuErr("descriptor pool creation", ret); err != nil {
		return err
	}
	fb.descPool = pool

	ret = vk.AllocateDescriptorSets(dev, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{fb.compSetLayout},
	}, &fb.compSet)
	if err := gpuErr("compute descriptor set allocation", ret); err != nil {
		return err
	}

	vk.UpdateDescriptorSets(dev, 2, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          fb.compSet,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeStorageBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: fb.packedBuf.Buffer,
			Range:  fb.packedBuf.Size,
		}},
	}, {
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          fb.compSet,
		DstBinding:      1,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeStorageBuffer,
		PBufferInfo: []vk.DescriptorBufferInfo{{
			Buffer: fb.unpackedBuf.Buffer,
			Range:  fb.unpackedBuf.Size,
		}},
	}}, 0, nil)
	return nil
}

func (fb *FrontBlit) createFuture() error {
	future, err := newGPUFuture(fb.ctx)
	fb.future = future
	return err
}

// SyncPrevious waits out the previous frame's submission and releases its
// transients. The presenter calls this before re-arming the acquire
// semaphore: that submission holds a wait operation on the semaphore
// until its fence signals, and AcquireNextImage may not signal a
// semaphore with waits still pending.
func (fb *FrontBlit) SyncPrevious() error {
	return fb.future.wait()
}

// SetTargets points the blitter at the current swapchain images. Called
// at startup and again after every swapchain rebuild. Framebuffers are
// not built here; each Blit wraps its target view in a transient one.
func (fb *FrontBlit) SetTargets(views []vk.ImageView, extent vk.Extent2D) {
	fb.targetViews = views
	fb.targetExtent = extent
}

// createBlitView wraps the sampled source image in a fresh view. The
// component mapping swaps R and B: a 1555 view over the little-endian
// VRAM words lands red in the blue channel (and the 24-bit staging
// texture is deliberately BGRA to match), so the swizzle puts both
// paths right without touching the fragment stage.
func (fb *FrontBlit) createBlitView(img vk.Image, format vk.Format) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(fb.ctx.Device, &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    img,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleB,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleR,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}, nil, &view)
	return view, gpuErr("image view creation", ret)
}

func (fb *FrontBlit) allocBlitSet(view vk.ImageView, layout vk.ImageLayout) (vk.DescriptorSet, error) {
	var set vk.DescriptorSet
	ret := vk.AllocateDescriptorSets(fb.ctx.Device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     fb.descPool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{fb.gfxSetLayout},
	}, &set)
	if err := gpuErr("blit descriptor set allocation", ret); err != nil {
		return vk.NullDescriptorSet, err
	}
	vk.UpdateDescriptorSets(fb.ctx.Device, 1, []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo: []vk.DescriptorImageInfo{{
			Sampler:     fb.sampler,
			ImageView:   view,
			ImageLayout: layout,
		}},
	}}, 0, nil)
	return set, nil
}

func (fb *FrontBlit) createTargetFramebuffer(target uint32) (vk.Framebuffer, error) {
	var framebuffer vk.Framebuffer
	ret := vk.CreateFramebuffer(fb.ctx.Device, &vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      fb.renderPass,
		AttachmentCount: 1,
		PAttachments:    []vk.ImageView{fb.targetViews[target]},
		Width:           fb.targetExtent.Width,
		Height:          fb.targetExtent.Height,
		Layers:          1,
	}, nil, &framebuffer)
	return framebuffer, gpuErr("framebuffer creation", ret)
}

// Blit records and submits one frame: optional 24-bit unpack, then the
// sampled quad into the target image. imageReady is the swapchain
// acquire semaphore; the returned future's done semaphore gates the
// present. The previous frame is drained first if the caller has not
// already done so through SyncPrevious; a no-op otherwise.
func (fb *FrontBlit) Blit(src blitSource, target uint32, imageReady vk.Semaphore) (*gpuFuture, error) {
	if err := fb.future.wait(); err != nil {
		return nil, err
	}
	dev := fb.ctx.Device

	srcImage := fb.vram
	srcFormat := vk.FormatA1r5g5b5UnormPack16
	srcLayout := vk.ImageLayoutGeneral
	_, staged := src.(blitSource24)
	if staged {
		srcImage = fb.unpackedImage.Image
		srcFormat = fb.unpackedImage.Format
		srcLayout = vk.ImageLayoutShaderReadOnlyOptimal
	}

	view, err := fb.createBlitView(srcImage, srcFormat)
	if err != nil {
		return nil, err
	}
	fb.future.attach(func() { vk.DestroyImageView(dev, view, nil) })

	set, err := fb.allocBlitSet(view, srcLayout)
	if err != nil {
		return nil, err
	}
	fb.future.attach(func() { vk.FreeDescriptorSets(dev, fb.descPool, 1, &set) })

	framebuffer, err := fb.createTargetFramebuffer(target)
	if err != nil {
		return nil, err
	}
	fb.future.attach(func() { vk.DestroyFramebuffer(dev, framebuffer, nil) })

	cmd, err := fb.ctx.allocateCommandBuffer()
	if err != nil {
		return nil, err
	}
	fb.future.cmd = cmd

	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	})
	if err := gpuErr("command buffer begin", ret); err != nil {
		return nil, err
	}

	if staged {
		fb.recordUnpack(cmd)
	}
	fb.recordBlitPass(cmd, src.blitRegion(), set, framebuffer)

	if err := gpuErr("command buffer end", vk.EndCommandBuffer(cmd)); err != nil {
		return nil, err
	}

	ret = vk.QueueSubmit(fb.ctx.Queue, 1, []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{imageReady},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{fb.future.done},
	}}, fb.future.fence)
	if err := gpuErr("blit submit", ret); err != nil {
		return nil, err
	}
	return fb.future, nil
}

// recordUnpack records the 24-bit staging chain: VRAM image -> packed
// buffer -> compute unpack -> unpacked buffer -> staging texture.
func (fb *FrontBlit) recordUnpack(cmd vk.CommandBuffer) {
	wholeVRAM := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LayerCount: 1,
		},
		ImageExtent: vk.Extent3D{Width: vramWidthWords, Height: vramHeight, Depth: 1},
	}
	vk.CmdCopyImageToBuffer(cmd, fb.vram, vk.ImageLayoutGeneral,
		fb.packedBuf.Buffer, 1, []vk.BufferImageCopy{wholeVRAM})

	vk.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit),
		0, 0, nil, 1, []vk.BufferMemoryBarrier{{
			SType:               vk.StructureTypeBufferMemoryBarrier,
			SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
			DstAccessMask:       vk.AccessFlags(vk.AccessShaderReadBit),
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Buffer:              fb.packedBuf.Buffer,
			Size:                vk.DeviceSize(vk.WholeSize),
		}}, 0, nil)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointCompute, fb.compPipeline)
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointCompute, fb.compLayout,
		0, 1, []vk.DescriptorSet{fb.compSet}, 0, nil)
	vk.CmdDispatch(cmd, groupCount(vramWidth24bpp), groupCount(vramHeight), 1)

	vk.CmdPipelineBarrier(cmd,
		vk.PipelineStageFlags(vk.PipelineStageComputeShaderBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		0, 0, nil, 1, []vk.BufferMemoryBarrier{{
			SType:               vk.StructureTypeBufferMemoryBarrier,
			SrcAccessMask:       vk.AccessFlags(vk.AccessShaderWriteBit),
			DstAccessMask:       vk.AccessFlags(vk.AccessTransferReadBit),
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Buffer:              fb.unpackedBuf.Buffer,
			Size:                vk.DeviceSize(vk.WholeSize),
		}}, 0, nil)

	// The staging texture's previous contents are dead; Undefined discards
	// them instead of forcing a transition chain across frames.
	fb.imageBarrier(cmd, fb.unpackedImage.Image,
		vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal,
		0, vk.AccessFlags(vk.AccessTransferWriteBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit))

	vk.CmdCopyBufferToImage(cmd, fb.unpackedBuf.Buffer, fb.unpackedImage.Image,
		vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{{
			ImageSubresource: vk.ImageSubresourceLayers{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LayerCount: 1,
			},
			ImageExtent: vk.Extent3D{Width: vramWidth24bpp, Height: vramHeight, Depth: 1},
		}})

	fb.imageBarrier(cmd, fb.unpackedImage.Image,
		vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal,
		vk.AccessFlags(vk.AccessTransferWriteBit), vk.AccessFlags(vk.AccessShaderReadBit),
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit))
}

func (fb *FrontBlit) imageBarrier(cmd vk.CommandBuffer, img vk.Image,
	oldLayout, newLayout vk.ImageLayout, srcAccess, dstAccess vk.AccessFlags,
	srcStage, dstStage vk.PipelineStageFlags) {
	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil,
		1, []vk.ImageMemoryBarrier{{
			SType:               vk.StructureTypeImageMemoryBarrier,
			SrcAccessMask:       srcAccess,
			DstAccessMask:       dstAccess,
			OldLayout:           oldLayout,
			NewLayout:           newLayout,
			SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
			DstQueueFamilyIndex: vk.QueueFamilyIgnored,
			Image:               img,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}})
}

func (fb *FrontBlit) recordBlitPass(cmd vk.CommandBuffer, region BlitRegion, set vk.DescriptorSet, framebuffer vk.Framebuffer) {
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  fb.renderPass,
		Framebuffer: framebuffer,
		RenderArea:  vk.Rect2D{Extent: fb.targetExtent},
	}, vk.SubpassContentsInline)

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, fb.gfxPipeline)
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		Width:    float32(fb.targetExtent.Width),
		Height:   float32(fb.targetExtent.Height),
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{Extent: fb.targetExtent}})
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{fb.vertexBuf.Buffer}, []vk.DeviceSize{0})
	vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, fb.gfxLayout,
		0, 1, []vk.DescriptorSet{set}, 0, nil)

	pc := blitPushConstants{
		TopLeft: region.TopLeft,
		Size:    region.Size,
		Extent:  region.Extent,
	}
	vk.CmdPushConstants(cmd, fb.gfxLayout, vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		0, blitPushConstantsSize, unsafe.Pointer(&pc))

	vk.CmdDraw(cmd, 4, 1, 0, 0)
	vk.CmdEndRenderPass(cmd)
}

// Destroy waits out in-flight work and releases everything. Safe on a
// partially constructed pipeline.
func (fb *FrontBlit) Destroy() {
	dev := fb.ctx.Device
	if fb.future != nil {
		fb.future.destroy()
		fb.future = nil
	}
	if fb.gfxPipeline != vk.NullPipeline {
		vk.DestroyPipeline(dev, fb.gfxPipeline, nil)
	}
	if fb.compPipeline != vk.NullPipeline {
		vk.DestroyPipeline(dev, fb.compPipeline, nil)
	}
	if fb.gfxLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(dev, fb.gfxLayout, nil)
	}
	if fb.compLayout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(dev, fb.compLayout, nil)
	}
	if fb.descPool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(dev, fb.descPool, nil)
	}
	if fb.gfxSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(dev, fb.gfxSetLayout, nil)
	}
	if fb.compSetLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(dev, fb.compSetLayout, nil)
	}
	fb.ctx.destroyImage(fb.unpackedImage)
	fb.ctx.destroyBuffer(fb.packedBuf)
	fb.ctx.destroyBuffer(fb.unpackedBuf)
	fb.ctx.destroyBuffer(fb.vertexBuf)
	if fb.sampler != vk.NullSampler {
		vk.DestroySampler(dev, fb.sampler, nil)
	}
	if fb.renderPass != vk.NullRenderPass {
		vk.DestroyRenderPass(dev, fb.renderPass, nil)
	}
}
