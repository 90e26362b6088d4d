// ps1_blit_shaders.go - SPIR-V loading for the front blit pipelines

/*
The GLSL sources live under shaders/ and are the authoritative reference;
the .spv binaries are produced by go:generate and embedded. Keeping the
sources in-tree means the software fallbacks (unpack24To32, softwareBlit)
can be audited against the exact shader text they mirror.
*/

package main

//go:generate glslc shaders/blit.vert -o shaders/blit.vert.spv
//go:generate glslc shaders/blit.frag -o shaders/blit.frag.spv
//go:generate glslc shaders/unpack24.comp -o shaders/unpack24.comp.spv

import (
	"embed"
	"encoding/binary"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

//go:embed shaders
var shaderFS embed.FS

const spirvMagic = 0x07230203

// blitPushConstants matches the push_constant block of blit.vert: the
// display region descriptor as three uvec2s, std430 layout, 24 bytes.
type blitPushConstants struct {
	TopLeft [2]uint32
	Size    [2]uint32
	Extent  [2]uint32
}

const blitPushConstantsSize = uint32(unsafe.Sizeof(blitPushConstants{}))

// loadShaderWords reads an embedded SPIR-V binary as the word slice the
// shader-module create info wants. A missing binary means go generate was
// never run; that is a build environment fault, reported as such.
func loadShaderWords(name string) ([]uint32, error) {
	raw, err := shaderFS.ReadFile("shaders/" + name)
	if err != nil {
		return nil, &GPUError{Operation: "shader load",
			Details: fmt.Sprintf("%s missing; run 'go generate' with glslc on PATH to compile the shaders", name),
			Err:     err}
	}
	if len(raw) < 4 || len(raw)%4 != 0 {
		return nil, &GPUError{Operation: "shader load",
			Details: fmt.Sprintf("%s is not word-aligned (%d bytes)", name, len(raw))}
	}
	words := make([]uint32, len(raw)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, &GPUError{Operation: "shader load",
			Details: fmt.Sprintf("%s has bad SPIR-V magic %#08x", name, words[0])}
	}
	return words, nil
}

// createShaderModule loads an embedded binary into a shader module.
func (c *VulkanContext) createShaderModule(name string) (vk.ShaderModule, error) {
	words, err := loadShaderWords(name)
	if err != nil {
		return vk.NullShaderModule, err
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(c.Device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(words) * 4),
		PCode:    words,
	}, nil, &module)
	if err := gpuErr("shader module creation", ret); err != nil {
		return vk.NullShaderModule, &GPUError{Operation: "shader module creation",
			Details: name, Err: err}
	}
	return module, nil
}
