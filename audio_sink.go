// audio_sink.go - Audio output interface and sample buffering

/*
Cores hand audio over as interleaved stereo float32 at 44.1kHz; the sink
buffers it for the platform audio device. Two rules protect the frame
loop from the audio clock:

  Submit never blocks. Emulation timing is owned by the frame pacer; an
  audio device that falls behind must not stall video.

  The buffer is bounded at roughly one second. When a submit would
  overflow it, the whole buffer is dropped and refilled from silence,
  trading a single audible gap for never drifting seconds behind the
  action.
*/

package main

import (
	"fmt"
	"sync"
)

const (
	AUDIO_BACKEND_OTO  = iota // platform playback through oto
	AUDIO_BACKEND_NONE        // buffering only, for headless runs and tests
)

const (
	audioSampleRate = 44100
	audioChannels   = 2

	// One second of interleaved stereo.
	audioBufferBound = audioSampleRate * audioChannels
)

// AudioSink accepts core-produced samples for playback.
type AudioSink interface {
	// Submit queues interleaved stereo samples. Never blocks.
	Submit(samples []float32)

	// Start begins playback.
	Start() error

	// Close stops playback and releases the device.
	Close() error
}

// NewAudioSink creates an audio sink using the specified backend.
func NewAudioSink(backend int) (AudioSink, error) {
	switch backend {
	case AUDIO_BACKEND_OTO:
		return newOtoAudioSink()
	case AUDIO_BACKEND_NONE:
		return newHeadlessAudioSink(), nil
	}
	return nil, fmt.Errorf("unsupported audio backend: %d", backend)
}

// sampleRing is the bounded sample queue shared by all sinks.
type sampleRing struct {
	mu  sync.Mutex
	buf []float32
}

func (r *sampleRing) submit(samples []float32) {
	if len(samples) == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.buf)+len(samples) > audioBufferBound {
		// A full second queued means playback has lost the plot; dropping
		// everything resynchronizes faster than draining ever would.
		r.buf = r.buf[:0]
	}
	r.buf = append(r.buf, samples...)
}

// take moves up to n samples into out and returns how many it moved.
func (r *sampleRing) take(out []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := copy(out, r.buf)
	r.buf = r.buf[:copy(r.buf, r.buf[n:])]
	return n
}

func (r *sampleRing) buffered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buf)
}

// headlessAudioSink buffers without a device.
type headlessAudioSink struct {
	ring sampleRing
}

func newHeadlessAudioSink() *headlessAudioSink { return &headlessAudioSink{} }

func (s *headlessAudioSink) Submit(samples []float32) { s.ring.submit(samples) }
func (s *headlessAudioSink) Start() error             { return nil }
func (s *headlessAudioSink) Close() error             { return nil }

// Buffered returns how many samples are queued.
func (s *headlessAudioSink) Buffered() int { return s.ring.buffered() }

// Drain removes and returns everything queued.
func (s *headlessAudioSink) Drain() []float32 {
	out := make([]float32, s.ring.buffered())
	n := s.ring.take(out)
	return out[:n]
}
