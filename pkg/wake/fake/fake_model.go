// Package fake provides a scriptable wake.Model for tests.
package fake

import (
	"fmt"
	"sync"
)

// Model is a fake spotting model. DetectFn decides per-frame whether a
// detection fires; Score calls are counted for frame-accounting assertions.
type Model struct {
	FrameSize int
	// DetectFn is invoked once per scored frame. Nil means never detect.
	DetectFn func(frame []float32) (string, bool)
	// AddProfileErr injects a profile load failure.
	AddProfileErr error

	mu         sync.Mutex
	profiles   []string
	scoreCalls int
}

// NewModel creates a fake model scoring frames of the given size.
func NewModel(frameSize int) *Model {
	return &Model{FrameSize: frameSize}
}

func (m *Model) AddProfile(name string, data []byte) error {
	if m.AddProfileErr != nil {
		return m.AddProfileErr
	}
	if len(data) == 0 {
		return fmt.Errorf("empty profile data")
	}
	m.mu.Lock()
	m.profiles = append(m.profiles, name)
	m.mu.Unlock()
	return nil
}

func (m *Model) SamplesPerFrame() int {
	return m.FrameSize
}

func (m *Model) Score(frame []float32) (string, bool) {
	m.mu.Lock()
	m.scoreCalls++
	m.mu.Unlock()
	if m.DetectFn == nil {
		return "", false
	}
	return m.DetectFn(frame)
}

// ScoreCalls returns how many frames have been scored.
func (m *Model) ScoreCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scoreCalls
}

// Profiles returns the names of loaded profiles.
func (m *Model) Profiles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.profiles))
	copy(out, m.profiles)
	return out
}
