// ps1_unpack.go - VRAM display region math and 24bpp unpack reference

/*
The PlayStation GPU scans its display out of a 1024x512 sixteen-bit VRAM.
In 24-bit display mode three consecutive bytes form one pixel, so the
on-screen pixel row is packed across 1.5 VRAM words. BlitRegion describes
the scanned-out rectangle in display pixels; the unpack kernel widens the
packed 24-bit rows into 32-bit RGBA the sampler can read directly.

unpack24To32 is the CPU rendition of shaders/unpack24.comp. It is the
reference the GPU path is tested against and the kernel the software
front blit backend runs for real; both must agree byte for byte.
*/

package main

// VRAM geometry. The VRAM is addressed as 16-bit words; byte counts
// derive from that.
const (
	vramWidthWords = 1024
	vramHeight     = 512
	vramRowBytes   = vramWidthWords * 2

	// In 24-bit mode each pixel spans three bytes, so a full VRAM row
	// holds floor(2048/3) = 682 whole pixels.
	vramWidth24bpp = vramRowBytes / 3

	// Compute dispatch granularity of the unpack shader.
	unpackLocalSize = 8
)

// BlitRegion is the scanned-out VRAM sub-rectangle, in display pixels.
// TopLeft and Size locate the region inside an unpacked texture of
// dimensions Extent. For 16-bit mode Extent is the raw VRAM size; for
// 24-bit mode it is the unpacked 682x512 image.
type BlitRegion struct {
	TopLeft [2]uint32
	Size    [2]uint32
	Extent  [2]uint32
}

// texTransform returns the scale and offset the blit vertex stage derives
// from the region descriptor, mapping the quad's normalized device
// coordinates onto texture coordinates: tex = ((pos+1)/2)*scale + offset,
// per axis. The software blit uses the same mapping.
func (r BlitRegion) texTransform() (scale, offset [2]float32) {
	for i := 0; i < 2; i++ {
		scale[i] = float32(r.Size[i]) / float32(r.Extent[i])
		offset[i] = float32(r.TopLeft[i]) / float32(r.Extent[i])
	}
	return scale, offset
}

// groupCount returns how many workgroups cover n items at the unpack
// shader's local size.
func groupCount(n uint32) uint32 {
	return (n + unpackLocalSize - 1) / unpackLocalSize
}

// unpack24To32 widens packed 24bpp rows from src (raw VRAM bytes, 2048 per
// row) into dst (one uint32 per pixel, 682 per row), exactly as the
// compute shader does. Invocations past the pixel grid, and the tail
// pixel whose third byte would cross the row boundary, write nothing, so
// stale dst contents survive there.
func unpack24To32(dst []uint32, src []byte, width, height uint32) {
	for y := uint32(0); y < groupCount(height)*unpackLocalSize; y++ {
		for x := uint32(0); x < groupCount(width)*unpackLocalSize; x++ {
			if x >= width || y >= height {
				continue
			}
			base := y*vramRowBytes + x*3
			rowEnd := (y + 1) * vramRowBytes
			if base+2 >= rowEnd {
				continue
			}
			r := uint32(src[base])
			g := uint32(src[base+1])
			b := uint32(src[base+2])
			dst[y*width+x] = 0xFF000000 | b<<16 | g<<8 | r
		}
	}
}
