// Package stt provides ephemeral per-utterance speech recognition. A
// SentenceRecognizer opens a dedicated capture stream, feeds chunks into a
// decoding model, and blocks until exactly one terminal outcome: a final
// transcript, a decode failure, or a timeout.
package stt

// DecodingState is the decoder's verdict after accepting one chunk.
type DecodingState int

const (
	StateRunning DecodingState = iota
	StateFinalized
	StateFailed
)

// Decoder is a single-utterance decoding session. Implementations are not
// safe for concurrent use; the recognizer feeds chunks from the audio
// delivery callback only.
type Decoder interface {
	// AcceptWaveform feeds one chunk of 16-bit PCM samples. A non-nil error
	// is a recoverable mid-stream fault, distinct from StateFailed.
	AcceptWaveform(samples []int16) (DecodingState, error)

	// FinalResult returns the finalized transcript. Valid only after
	// AcceptWaveform has reported StateFinalized.
	FinalResult() (string, error)

	// Close releases the decoder.
	Close()
}

// Model allocates decoders. The model is loaded once and is read-only for
// the remainder of the program; sessions are strictly sequential.
type Model interface {
	NewDecoder(sampleRate int) (Decoder, error)
}

// Outcome tags the terminal result of a recognition session.
type Outcome int

const (
	// OutcomeFinal means the decoder produced a finalized transcript.
	OutcomeFinal Outcome = iota
	// OutcomeFailed means the decoder reported an unrecoverable failure.
	OutcomeFailed
	// OutcomeCancelled means the session timed out before finalizing.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinal:
		return "final"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is the single terminal outcome of a recognition session. Text is
// set only for OutcomeFinal and is immutable after creation.
type Result struct {
	Outcome Outcome
	Text    string
}
