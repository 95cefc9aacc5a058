// Package tts defines the speech synthesis interface the assistant gates
// listening on, plus an OpenAI-backed implementation.
package tts

// Synthesizer speaks text out loud. Speak starts playback and returns;
// callers poll IsSpeaking to find out when the utterance finished.
type Synthesizer interface {
	// Speak synthesizes text and begins playing it.
	Speak(text string) error

	// IsSpeaking reports whether playback is in progress.
	IsSpeaking() (bool, error)
}
