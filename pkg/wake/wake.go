// Package wake implements continuous wakeword spotting over a live capture
// stream. Audio chunks are buffered into model-sized frames and scored one
// frame at a time inside the audio backend's delivery callback; detections
// are published on an unbounded channel consumed through a Listener.
package wake

import "errors"

var (
	// ErrNoProfiles is returned by Start when no wakeword profile was added.
	ErrNoProfiles = errors.New("no wakeword profiles added")

	// ErrClosed is returned by Listen when the detection channel has
	// disconnected, meaning the capture stream is gone. Callers should stop
	// their listening loop entirely.
	ErrClosed = errors.New("wakeword listener closed")

	// ErrAlreadyStarted is returned by Start when the spotter is running.
	ErrAlreadyStarted = errors.New("spotter already started")
)

// Model is a wakeword scoring engine. Implementations hold one or more named
// profiles and score fixed-size audio frames against all of them.
//
// Score runs inside the audio delivery callback and must keep pace with
// chunk arrival; a slow model grows the spotter's backlog and adds detection
// latency.
type Model interface {
	// AddProfile loads an opaque profile artifact under the given name.
	AddProfile(name string, data []byte) error

	// SamplesPerFrame is the fixed number of samples required per Score call.
	SamplesPerFrame() int

	// Score evaluates one frame and reports at most one detection,
	// returning the detected profile's name.
	Score(frame []float32) (string, bool)
}
