// ps1_front_blit_software.go - CPU reference of the VRAM front blit

/*
Pixel-exact CPU rendition of the Vulkan front blit, used two ways: as the
blit backend for headless sessions, and as the reference implementation
the pipeline's semantics are tested against. Each stage mirrors its GPU
counterpart: texture building mirrors the raw source formats, sampling
mirrors the nearest/repeat sampler, and the channel swap mirrors the
sampled view's R/B component mapping.

Texels and output pixels are channel-packed 0xAARRGGBB words (channel
order, not memory order).
*/

package main

// pixelImage is a dense 32-bit channel-packed image.
type pixelImage struct {
	w, h int
	pix  []uint32
}

func newPixelImage(w, h int) *pixelImage {
	return &pixelImage{w: w, h: h, pix: make([]uint32, w*h)}
}

// at samples with repeat addressing on both axes.
func (p *pixelImage) at(x, y int) uint32 {
	x = ((x % p.w) + p.w) % p.w
	y = ((y % p.h) + p.h) % p.h
	return p.pix[y*p.w+x]
}

// expand5 widens a 5-bit channel to 8 bits the way the hardware sampler
// normalizes a UNORM_PACK16 texel.
func expand5(v uint32) uint32 {
	return v<<3 | v>>2
}

// SoftwareFrontBlit mirrors FrontBlit on the CPU.
type SoftwareFrontBlit struct {
	tex16 *pixelImage
	tex24 *pixelImage
}

func NewSoftwareFrontBlit() *SoftwareFrontBlit {
	return &SoftwareFrontBlit{
		tex16: newPixelImage(vramWidthWords, vramHeight),
		tex24: newPixelImage(vramWidth24bpp, vramHeight),
	}
}

// buildTex16 mirrors sampling VRAM through the A1R5G5B5 view: the word's
// high five color bits (PSX blue) land in the texel's red channel, the
// low five (PSX red) in blue.
func (s *SoftwareFrontBlit) buildTex16(vram []byte) {
	for i := range s.tex16.pix {
		word := uint32(vram[i*2]) | uint32(vram[i*2+1])<<8
		s.tex16.pix[i] = 0xFF000000 |
			expand5(word>>10&31)<<16 |
			expand5(word>>5&31)<<8 |
			expand5(word&31)
	}
}

// buildTex24 mirrors the compute unpack plus the BGRA staging view. The
// kernel's output word happens to already be the channel-packed texel
// when read through that view, so the kernel output is used as-is.
func (s *SoftwareFrontBlit) buildTex24(vram []byte) {
	unpack24To32(s.tex24.pix, vram, vramWidth24bpp, vramHeight)
}

// Blit renders the display region of vram (raw bytes, 2048 per row) into
// dst, matching the GPU pipeline texel for texel.
func (s *SoftwareFrontBlit) Blit(src blitSource, vram []byte, dst *pixelImage) {
	var tex *pixelImage
	switch src.(type) {
	case blitSource24:
		s.buildTex24(vram)
		tex = s.tex24
	default:
		s.buildTex16(vram)
		tex = s.tex16
	}

	region := src.blitRegion()
	scale, offset := region.texTransform()
	for py := 0; py < dst.h; py++ {
		for px := 0; px < dst.w; px++ {
			// Pixel center through the vertex stage's NDC-to-tex mapping,
			// then nearest sampling.
			u := (float32(px)+0.5)/float32(dst.w)*scale[0] + offset[0]
			v := (float32(py)+0.5)/float32(dst.h)*scale[1] + offset[1]
			texel := tex.at(int(u*float32(tex.w)), int(v*float32(tex.h)))

			// View component mapping: swap red and blue, force opaque.
			dst.pix[py*dst.w+px] = 0xFF000000 |
				(texel&0xFF)<<16 |
				(texel & 0xFF00) |
				(texel>>16)&0xFF
		}
	}
}
