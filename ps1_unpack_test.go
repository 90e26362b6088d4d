// ps1_unpack_test.go - Tests for the 24bpp unpack kernel and region math

package main

import "testing"

func TestUnpack24_PixelPacking(t *testing.T) {
	// Bytes 0,1,2 are R,G,B of pixel 0; bytes 3,4,5 of pixel 1; etc.
	src := make([]byte, vramRowBytes)
	for i := 0; i < 12; i++ {
		src[i] = byte(i)
	}
	dst := make([]uint32, vramWidth24bpp)
	unpack24To32(dst, src, vramWidth24bpp, 1)

	want := []uint32{
		0xFF000000 | 2<<16 | 1<<8 | 0,
		0xFF000000 | 5<<16 | 4<<8 | 3,
		0xFF000000 | 8<<16 | 7<<8 | 6,
		0xFF000000 | 11<<16 | 10<<8 | 9,
	}
	for i, w := range want {
		if dst[i] != w {
			t.Errorf("pixel %d: got %#08x, want %#08x", i, dst[i], w)
		}
	}
}

func TestUnpack24_AlphaAlwaysOpaque(t *testing.T) {
	src := make([]byte, vramRowBytes*4)
	for i := range src {
		src[i] = byte(i * 7)
	}
	dst := make([]uint32, vramWidth24bpp*4)
	unpack24To32(dst, src, vramWidth24bpp, 4)
	for i, px := range dst {
		if px>>24 != 0xFF {
			t.Fatalf("pixel %d: alpha not forced opaque: %#08x", i, px)
		}
	}
}

func TestUnpack24_RowStrideIsRawVRAM(t *testing.T) {
	// Row 1 must be read 2048 bytes after row 0 even though only
	// 682*3 = 2046 of those bytes hold pixels.
	src := make([]byte, vramRowBytes*2)
	src[vramRowBytes] = 0xAA // R of pixel (0,1)
	dst := make([]uint32, vramWidth24bpp*2)
	unpack24To32(dst, src, vramWidth24bpp, 2)

	if got := dst[vramWidth24bpp]; got != 0xFF0000AA {
		t.Errorf("pixel (0,1): got %#08x, want 0xFF0000AA", got)
	}
}

func TestUnpack24_LastPixelStaysInsideRow(t *testing.T) {
	// Pixel 681 occupies bytes 2043..2045; the two slack bytes at the end
	// of the row must never leak into it.
	src := make([]byte, vramRowBytes)
	src[vramRowBytes-5] = 1 // R of pixel 681
	src[vramRowBytes-4] = 2
	src[vramRowBytes-3] = 3
	src[vramRowBytes-2] = 0xEE // slack
	src[vramRowBytes-1] = 0xEE
	dst := make([]uint32, vramWidth24bpp)
	unpack24To32(dst, src, vramWidth24bpp, 1)

	if got := dst[vramWidth24bpp-1]; got != 0xFF030201 {
		t.Errorf("pixel 681: got %#08x, want 0xFF030201", got)
	}
}

func TestUnpack24_OutOfGridLeavesOutputUntouched(t *testing.T) {
	// Dispatch is rounded up to 8x8 workgroups; invocations past the
	// requested grid must not write. Seed dst with a sentinel and unpack a
	// region smaller than one workgroup.
	src := make([]byte, vramRowBytes*8)
	const sentinel = 0xDEADBEEF
	dst := make([]uint32, 5*3+16)
	for i := range dst {
		dst[i] = sentinel
	}
	unpack24To32(dst, src, 5, 3)

	for i := 5 * 3; i < len(dst); i++ {
		if dst[i] != sentinel {
			t.Fatalf("dst[%d] clobbered by out-of-grid invocation: %#08x", i, dst[i])
		}
	}
	for i := 0; i < 5*3; i++ {
		if dst[i] != 0xFF000000 {
			t.Errorf("dst[%d]: got %#08x, want 0xFF000000", i, dst[i])
		}
	}
}

func TestBlitRegion_TexTransform(t *testing.T) {
	// A 640x480 display window at VRAM position (0,16) against the raw
	// 1024x512 sixteen-bit extent.
	r := BlitRegion{
		TopLeft: [2]uint32{0, 16},
		Size:    [2]uint32{640, 480},
		Extent:  [2]uint32{vramWidthWords, vramHeight},
	}
	scale, offset := r.texTransform()

	if scale[0] != 640.0/1024.0 || scale[1] != 480.0/512.0 {
		t.Errorf("scale: got %v", scale)
	}
	if offset[0] != 0 || offset[1] != 16.0/512.0 {
		t.Errorf("offset: got %v", offset)
	}

	// Quad corner (-1,-1) maps to the region's top-left texel, (1,1) to
	// its bottom-right edge.
	u0 := ((-1.0+1.0)/2.0)*scale[0] + offset[0]
	v0 := ((-1.0+1.0)/2.0)*scale[1] + offset[1]
	u1 := ((1.0+1.0)/2.0)*scale[0] + offset[0]
	v1 := ((1.0+1.0)/2.0)*scale[1] + offset[1]
	if u0 != 0 || v0 != float32(16.0/512.0) {
		t.Errorf("top-left maps to (%v,%v)", u0, v0)
	}
	if u1 != float32(640.0/1024.0) || v1 != float32((16.0+480.0)/512.0) {
		t.Errorf("bottom-right maps to (%v,%v)", u1, v1)
	}
}

func TestGroupCount_RoundsUp(t *testing.T) {
	cases := []struct{ n, want uint32 }{
		{1, 1}, {8, 1}, {9, 2}, {512, 64}, {682, 86},
	}
	for _, c := range cases {
		if got := groupCount(c.n); got != c.want {
			t.Errorf("groupCount(%d): got %d, want %d", c.n, got, c.want)
		}
	}
}
