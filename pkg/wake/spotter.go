package wake

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/eapache/channels"

	"github.com/hearken-ai/hearken/pkg/audio"
)

// Spotter buffers capture chunks into model-sized frames and scores them
// continuously. Profiles must be added before Start; the capture stream then
// runs for the lifetime of the assistant.
type Spotter struct {
	model  Model
	device audio.Device

	// buf is touched only by the audio delivery callback.
	buf []float32

	mu       sync.Mutex
	profiles int
	started  bool
	stream   audio.Stream
	events   *channels.InfiniteChannel
}

// NewSpotter creates a spotter scoring frames from the given device with the
// given model. The device configuration should have been negotiated with the
// model's accepted formats (see audio.OpenInputDevice).
func NewSpotter(model Model, device audio.Device) *Spotter {
	return &Spotter{model: model, device: device}
}

// AddProfileFromFile loads a wakeword profile artifact from disk and hands
// it to the model. At least one profile is required before Start.
func (s *Spotter) AddProfileFromFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read wakeword profile %q: %w", path, err)
	}
	if err := s.model.AddProfile(name, data); err != nil {
		return fmt.Errorf("load wakeword profile %q: %w", name, err)
	}

	s.mu.Lock()
	s.profiles++
	s.mu.Unlock()
	return nil
}

// Start opens the capture stream and begins continuous spotting, returning a
// Listener for detections. It fails if no profile was added or if the stream
// cannot be constructed or started; there are no mid-stream failures after
// that.
func (s *Spotter) Start() (*Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil, ErrAlreadyStarted
	}
	if s.profiles == 0 {
		return nil, ErrNoProfiles
	}

	s.events = channels.NewInfiniteChannel()

	stream, err := s.device.Open(s.process)
	if err != nil {
		s.events.Close()
		return nil, fmt.Errorf("open wakeword capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		s.events.Close()
		return nil, fmt.Errorf("start wakeword capture stream: %w", err)
	}

	s.stream = stream
	s.started = true

	slog.Info("wakeword spotting started",
		slog.Int("profiles", s.profiles),
		slog.String("config", s.device.Config().String()))

	return &Listener{ch: s.events}, nil
}

// process runs on the audio backend's thread. It appends the chunk to the
// sample buffer and scores exactly one frame per iteration while a full
// frame is buffered, leaving the remainder for the next chunk.
func (s *Spotter) process(f audio.Frame) {
	s.buf = append(s.buf, f.Float32Samples()...)

	n := s.model.SamplesPerFrame()
	if n <= 0 {
		return
	}
	for len(s.buf) >= n {
		if name, ok := s.model.Score(s.buf[:n]); ok {
			s.events.In() <- name
		}
		s.buf = append(s.buf[:0], s.buf[n:]...)
	}
}

// Suspend pauses the capture stream so another consumer may open the input
// device. Buffered samples are kept; detection resumes where it left off.
func (s *Spotter) Suspend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	return s.stream.Stop()
}

// Resume restarts a suspended capture stream.
func (s *Spotter) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	return s.stream.Start()
}

// Close tears down the capture stream and disconnects the listener. Any
// blocked Listen call returns ErrClosed once buffered detections drain.
func (s *Spotter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}
	s.started = false
	err := s.stream.Close()
	s.events.Close()
	return err
}

// Listener receives wakeword detections. The underlying channel is
// unbounded, so the audio callback never blocks on a slow consumer.
type Listener struct {
	ch *channels.InfiniteChannel
}

// Listen blocks until a wakeword is detected and returns its profile name.
// It returns ErrClosed when the capture stream has been torn down and all
// buffered detections have been consumed.
func (l *Listener) Listen() (string, error) {
	v, ok := <-l.ch.Out()
	if !ok {
		return "", ErrClosed
	}
	return v.(string), nil
}
