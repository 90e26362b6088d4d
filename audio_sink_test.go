// audio_sink_test.go - Tests for audio buffering behavior

package main

import "testing"

func TestAudioSink_SubmitAndDrain(t *testing.T) {
	sink := newHeadlessAudioSink()
	sink.Submit([]float32{0.5, -0.5})
	sink.Submit([]float32{0.25, -0.25})

	got := sink.Drain()
	want := []float32{0.5, -0.5, 0.25, -0.25}
	if len(got) != len(want) {
		t.Fatalf("drained %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if sink.Buffered() != 0 {
		t.Errorf("%d samples left after drain", sink.Buffered())
	}
}

func TestAudioSink_OverflowDropsBacklog(t *testing.T) {
	sink := newHeadlessAudioSink()
	almostFull := make([]float32, audioBufferBound-10)
	sink.Submit(almostFull)

	// This submit would exceed the one-second bound, so the backlog is
	// dropped and only the fresh samples remain.
	fresh := make([]float32, 100)
	sink.Submit(fresh)

	if got := sink.Buffered(); got != 100 {
		t.Errorf("after overflow: %d samples buffered, want 100", got)
	}
}

func TestAudioSink_EmptySubmitIsNoop(t *testing.T) {
	sink := newHeadlessAudioSink()
	sink.Submit(nil)
	sink.Submit([]float32{})
	if sink.Buffered() != 0 {
		t.Errorf("empty submits buffered %d samples", sink.Buffered())
	}
}

func TestRingReader_PadsUnderrunWithSilence(t *testing.T) {
	var ring sampleRing
	ring.submit([]float32{1.0})
	r := &ringReader{ring: &ring}

	p := make([]byte, 16) // room for four samples
	for i := range p {
		p[i] = 0xEE
	}
	n, err := r.Read(p)
	if err != nil || n != 16 {
		t.Fatalf("Read = %d, %v; want 16, nil", n, err)
	}
	// First sample is 1.0f (0x3F800000 little-endian)...
	if p[0] != 0 || p[1] != 0 || p[2] != 0x80 || p[3] != 0x3F {
		t.Errorf("first sample bytes = % x", p[:4])
	}
	// ...the rest is silence, not stale buffer contents.
	for i := 4; i < 16; i++ {
		if p[i] != 0 {
			t.Fatalf("underrun byte %d = %#x, want 0", i, p[i])
		}
	}
}
