// Package fake provides a scriptable stt.Model for tests.
package fake

import (
	"sync"

	"github.com/hearken-ai/hearken/pkg/stt"
)

// Model scripts decoder behavior chunk by chunk. Each AcceptWaveform call
// consumes the next entry of States; once exhausted the decoder reports
// StateRunning forever (useful for timeout tests).
type Model struct {
	// Transcript is returned by FinalResult.
	Transcript string
	// States is the scripted verdict sequence.
	States []stt.DecodingState
	// AcceptErr, when set, is returned by every AcceptWaveform call as a
	// recoverable mid-stream error.
	AcceptErr error
	// NewDecoderErr injects a decoder allocation failure.
	NewDecoderErr error

	mu       sync.Mutex
	decoders int
}

func (m *Model) NewDecoder(sampleRate int) (stt.Decoder, error) {
	if m.NewDecoderErr != nil {
		return nil, m.NewDecoderErr
	}
	m.mu.Lock()
	m.decoders++
	m.mu.Unlock()

	states := make([]stt.DecodingState, len(m.States))
	copy(states, m.States)
	return &decoder{model: m, states: states}, nil
}

// Decoders returns how many decoders have been allocated.
func (m *Model) Decoders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decoders
}

type decoder struct {
	model  *Model
	states []stt.DecodingState
	chunk  int
	closed bool
}

func (d *decoder) AcceptWaveform(samples []int16) (stt.DecodingState, error) {
	if d.model.AcceptErr != nil {
		return stt.StateRunning, d.model.AcceptErr
	}
	i := d.chunk
	d.chunk++
	if i < len(d.states) {
		return d.states[i], nil
	}
	return stt.StateRunning, nil
}

func (d *decoder) FinalResult() (string, error) {
	return d.model.Transcript, nil
}

func (d *decoder) Close() {
	d.closed = true
}
