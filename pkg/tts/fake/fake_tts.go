// Package fake provides a controllable Synthesizer for testing.
package fake

import "sync"

// Synthesizer records spoken text and exposes a settable speaking state.
type Synthesizer struct {
	mu sync.Mutex

	// SpeakErr, when set, fails every Speak call.
	SpeakErr error

	// StatusErr, when set, fails every IsSpeaking call.
	StatusErr error

	speaking bool
	spoken   []string
}

// Speak records text and marks the synthesizer speaking.
func (s *Synthesizer) Speak(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SpeakErr != nil {
		return s.SpeakErr
	}
	s.spoken = append(s.spoken, text)
	s.speaking = true
	return nil
}

// IsSpeaking reports the state last set by Speak or SetSpeaking.
func (s *Synthesizer) IsSpeaking() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.StatusErr != nil {
		return false, s.StatusErr
	}
	return s.speaking, nil
}

// SetSpeaking overrides the speaking state.
func (s *Synthesizer) SetSpeaking(speaking bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaking = speaking
}

// Spoken returns every text passed to Speak, in order.
func (s *Synthesizer) Spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.spoken))
	copy(out, s.spoken)
	return out
}
