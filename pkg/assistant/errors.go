package assistant

import (
	"errors"
	"fmt"
)

var (
	// ErrListenerClosed means the wakeword capture stream died. The
	// assistant cannot produce further queries; callers should rebuild.
	ErrListenerClosed = errors.New("wakeword listener closed")

	// ErrRecognitionFailed means the decoder gave up on the utterance.
	ErrRecognitionFailed = errors.New("speech recognition failed")

	// ErrRecognitionTimeout means no sentence was finalized within the
	// session timeout.
	ErrRecognitionTimeout = errors.New("speech recognition timed out")
)

// CycleError marks a per-cycle failure: the wakeword fired but the rest of
// the cycle could not complete. The assistant stays usable; the caller
// decides whether to re-enter Listen.
type CycleError struct {
	// Wakeword is the profile name that started the failed cycle.
	Wakeword string
	Err      error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("assistant cycle for %q: %v", e.Wakeword, e.Err)
}

func (e *CycleError) Unwrap() error { return e.Err }

// IsRecoverable reports whether err is a per-cycle failure rather than a
// terminal one.
func IsRecoverable(err error) bool {
	var ce *CycleError
	return errors.As(err, &ce)
}
