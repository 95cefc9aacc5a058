package audio

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// FramesPerBuffer is the chunk size requested from the audio backend. The
// backend delivers one callback per chunk; all downstream buffering is in
// terms of these chunks.
const FramesPerBuffer = 1024

var (
	paInitOnce sync.Once
	paInitErr  error
)

// initBackend initializes portaudio exactly once per process. The library is
// never terminated; capture streams span the program's lifetime.
func initBackend() error {
	paInitOnce.Do(func() {
		paInitErr = portaudio.Initialize()
	})
	return paInitErr
}

// Stream is a started or startable capture stream bound to one device.
type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Device can open capture streams in its negotiated configuration. Frames
// are pushed to the callback on the audio backend's thread, so callbacks
// must not block.
type Device interface {
	Config() StreamConfig
	Open(onFrame func(Frame)) (Stream, error)
}

// InputDevice is the host's default input device with a negotiated stream
// configuration. It implements Device.
type InputDevice struct {
	info *portaudio.DeviceInfo
	cfg  StreamConfig
}

// OpenInputDevice resolves the host's default input device and negotiates a
// configuration compatible with a model accepting the given formats at
// wantRate. All failures here are construction-time: no device, or no
// compatible configuration.
func OpenInputDevice(wantRate int, accepted ...SampleFormat) (*InputDevice, error) {
	if err := initBackend(); err != nil {
		return nil, fmt.Errorf("initialize audio backend: %w", err)
	}

	info, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("no default input device: %w", err)
	}

	cfg, err := Negotiate(&deviceProber{info: info}, wantRate, accepted...)
	if err != nil {
		return nil, err
	}

	slog.Debug("negotiated input configuration",
		slog.String("device", info.Name),
		slog.String("config", cfg.String()))

	return &InputDevice{info: info, cfg: cfg}, nil
}

// Config returns the negotiated stream configuration.
func (d *InputDevice) Config() StreamConfig {
	return d.cfg
}

// Open creates a capture stream delivering chunks of the negotiated format.
// The stream is not started; callers own Start/Stop/Close.
func (d *InputDevice) Open(onFrame func(Frame)) (Stream, error) {
	params := d.streamParameters()

	var (
		stream *portaudio.Stream
		err    error
	)
	switch d.cfg.Format {
	case FormatInt16:
		stream, err = portaudio.OpenStream(params, func(in []int16) {
			samples := make([]int16, len(in))
			copy(samples, in)
			onFrame(Frame{Format: FormatInt16, Channels: d.cfg.Channels, SampleRate: d.cfg.SampleRate, Int16: samples})
		})
	case FormatInt32:
		stream, err = portaudio.OpenStream(params, func(in []int32) {
			samples := make([]int32, len(in))
			copy(samples, in)
			onFrame(Frame{Format: FormatInt32, Channels: d.cfg.Channels, SampleRate: d.cfg.SampleRate, Int32: samples})
		})
	case FormatFloat32:
		stream, err = portaudio.OpenStream(params, func(in []float32) {
			samples := make([]float32, len(in))
			copy(samples, in)
			onFrame(Frame{Format: FormatFloat32, Channels: d.cfg.Channels, SampleRate: d.cfg.SampleRate, Float32: samples})
		})
	default:
		return nil, fmt.Errorf("unsupported sample format %s", d.cfg.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("open input stream: %w", err)
	}

	return &paStream{stream: stream}, nil
}

func (d *InputDevice) streamParameters() portaudio.StreamParameters {
	return portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   d.info,
			Channels: d.cfg.Channels,
			Latency:  d.info.DefaultLowInputLatency,
		},
		SampleRate:      float64(d.cfg.SampleRate),
		FramesPerBuffer: FramesPerBuffer,
	}
}

// paStream adapts *portaudio.Stream to the Stream interface.
type paStream struct {
	stream *portaudio.Stream
	mu     sync.Mutex
	closed bool
}

func (s *paStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("stream closed")
	}
	return s.stream.Start()
}

func (s *paStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.stream.Stop()
}

func (s *paStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.stream.Close()
}

// deviceProber implements ConfigProber against a portaudio device.
type deviceProber struct {
	info *portaudio.DeviceInfo
}

func (p *deviceProber) DefaultConfig() (StreamConfig, error) {
	channels := p.info.MaxInputChannels
	if channels < 1 {
		return StreamConfig{}, fmt.Errorf("device %q has no input channels", p.info.Name)
	}
	return StreamConfig{
		Format:     FormatInt16,
		Channels:   channels,
		SampleRate: int(p.info.DefaultSampleRate),
	}, nil
}

func (p *deviceProber) Supports(cfg StreamConfig) bool {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   p.info,
			Channels: cfg.Channels,
			Latency:  p.info.DefaultLowInputLatency,
		},
		SampleRate:      float64(cfg.SampleRate),
		FramesPerBuffer: FramesPerBuffer,
	}

	var err error
	switch cfg.Format {
	case FormatInt16:
		err = portaudio.IsFormatSupported(params, func(in []int16) {})
	case FormatInt32:
		err = portaudio.IsFormatSupported(params, func(in []int32) {})
	case FormatFloat32:
		err = portaudio.IsFormatSupported(params, func(in []float32) {})
	default:
		return false
	}
	return err == nil
}
