// Package fake provides a deterministic Embedder for testing.
package fake

import (
	"context"
	"fmt"
	"sync"
)

// Embedder returns canned vectors per input text. Texts without a canned
// vector produce an error, which keeps tests honest about what they embed.
type Embedder struct {
	mu sync.Mutex

	// Vectors maps each text to the vector Embed returns for it.
	Vectors map[string][]float32

	// EmbedErr, when set, fails every Embed call.
	EmbedErr error

	// CloseErr, when set, is returned by Close.
	CloseErr error

	embedCalls int
	closed     bool
}

// Embed returns the canned vector for each text, in order.
func (e *Embedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.embedCalls++

	if e.EmbedErr != nil {
		return nil, e.EmbedErr
	}

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, ok := e.Vectors[text]
		if !ok {
			return nil, fmt.Errorf("no canned vector for %q", text)
		}
		out = append(out, vec)
	}
	return out, nil
}

// Close records the call and returns CloseErr.
func (e *Embedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return e.CloseErr
}

// EmbedCalls reports how many times Embed ran.
func (e *Embedder) EmbedCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.embedCalls
}

// Closed reports whether Close was called.
func (e *Embedder) Closed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}
