// Package fake provides an in-memory audio.Device for tests. Tests push
// frames by hand, standing in for the audio backend's delivery callback.
package fake

import (
	"fmt"
	"sync"

	"github.com/hearken-ai/hearken/pkg/audio"
)

// Device is a scriptable audio.Device. Frames pushed with Push are delivered
// synchronously to every started stream's callback, like the real backend's
// callback thread would.
type Device struct {
	Cfg audio.StreamConfig

	// OpenErr and StartErr inject construction-time failures.
	OpenErr  error
	StartErr error

	mu      sync.Mutex
	streams []*Stream
}

// NewDevice creates a fake device with a mono 16 kHz int16 configuration
// unless overridden.
func NewDevice() *Device {
	return &Device{
		Cfg: audio.StreamConfig{Format: audio.FormatInt16, Channels: 1, SampleRate: 16000},
	}
}

func (d *Device) Config() audio.StreamConfig {
	return d.Cfg
}

func (d *Device) Open(onFrame func(audio.Frame)) (audio.Stream, error) {
	if d.OpenErr != nil {
		return nil, d.OpenErr
	}
	s := &Stream{dev: d, onFrame: onFrame, startErr: d.StartErr}
	d.mu.Lock()
	d.streams = append(d.streams, s)
	d.mu.Unlock()
	return s, nil
}

// Push delivers a frame to every started, unclosed stream.
func (d *Device) Push(f audio.Frame) {
	d.mu.Lock()
	streams := make([]*Stream, len(d.streams))
	copy(streams, d.streams)
	d.mu.Unlock()

	for _, s := range streams {
		s.deliver(f)
	}
}

// PushInt16 is shorthand for pushing a mono int16 frame at the device rate.
func (d *Device) PushInt16(samples []int16) {
	d.Push(audio.Frame{
		Format:     audio.FormatInt16,
		Channels:   1,
		SampleRate: d.Cfg.SampleRate,
		Int16:      samples,
	})
}

// Streams returns all streams ever opened, for assertions on lifecycle.
func (d *Device) Streams() []*Stream {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Stream, len(d.streams))
	copy(out, d.streams)
	return out
}

// Stream is the fake stream handle returned by Device.Open.
type Stream struct {
	dev      *Device
	onFrame  func(audio.Frame)
	startErr error

	mu      sync.Mutex
	started bool
	closed  bool
}

func (s *Stream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("stream closed")
	}
	if s.startErr != nil {
		return s.startErr
	}
	s.started = true
	return nil
}

func (s *Stream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	return nil
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	s.closed = true
	return nil
}

// Running reports whether the stream is started and not closed.
func (s *Stream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started && !s.closed
}

// Closed reports whether Close was called.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Stream) deliver(f audio.Frame) {
	s.mu.Lock()
	running := s.started && !s.closed
	cb := s.onFrame
	s.mu.Unlock()
	if running {
		cb(f)
	}
}
