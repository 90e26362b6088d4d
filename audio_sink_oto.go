// audio_sink_oto.go - Audio playback through oto

package main

import (
	"encoding/binary"
	"math"

	"github.com/ebitengine/oto/v3"
)

// otoAudioSink plays the sample ring through the platform audio device.
// oto pulls from ringReader on its own goroutine; underruns read as
// silence so the device never starves or glitches on a slow frame.
type otoAudioSink struct {
	ctx    *oto.Context
	player *oto.Player
	ring   sampleRing
}

func newOtoAudioSink() (*otoAudioSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   audioSampleRate,
		ChannelCount: audioChannels,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	sink := &otoAudioSink{ctx: ctx}
	sink.player = ctx.NewPlayer(&ringReader{ring: &sink.ring})
	return sink, nil
}

func (s *otoAudioSink) Submit(samples []float32) { s.ring.submit(samples) }

func (s *otoAudioSink) Start() error {
	s.player.Play()
	return nil
}

func (s *otoAudioSink) Close() error {
	return s.player.Close()
}

// ringReader adapts the sample ring to the io.Reader oto pulls from.
type ringReader struct {
	ring    *sampleRing
	scratch []float32
}

func (r *ringReader) Read(p []byte) (int, error) {
	want := len(p) / 4
	if cap(r.scratch) < want {
		r.scratch = make([]float32, want)
	}
	got := r.ring.take(r.scratch[:want])
	for i := 0; i < got; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.scratch[i]))
	}
	// Pad the rest with silence rather than short-reading; oto treats a
	// starved reader as end of stream.
	for i := got * 4; i < want*4; i++ {
		p[i] = 0
	}
	return want * 4, nil
}
