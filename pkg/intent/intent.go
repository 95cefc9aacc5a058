// Package intent classifies transcripts into caller-defined intents by
// nearest-neighbor search over sentence embeddings. Example phrases are
// embedded once at build time; every Classify call embeds the query and runs
// a full linear scan over all stored example vectors.
package intent

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ConfidenceFloor is the minimum cosine similarity required to accept a
// classification.
const ConfidenceFloor = 0.5

var (
	// ErrNoIntents is returned by Build when the configuration holds no
	// intents. This is checked before the embedding model is touched.
	ErrNoIntents = errors.New("no intents provided")

	// ErrNoConfidentMatch is returned by Classify when no example reaches
	// the confidence floor.
	ErrNoConfidentMatch = errors.New("no intent matched with a confident score")
)

// Config collects intents and the embedding model source ahead of Build.
// The intent identifier type T is caller-supplied.
type Config[T any] struct {
	source  ModelSource
	intents []intentExamples[T]
}

type intentExamples[T any] struct {
	id       T
	examples []string
}

// NewConfig creates an empty classifier configuration backed by the given
// embedding model source.
func NewConfig[T any](source ModelSource) *Config[T] {
	return &Config[T]{source: source}
}

// AddIntent registers an intent with one or more example phrases.
func (c *Config[T]) AddIntent(id T, examples ...string) {
	c.intents = append(c.intents, intentExamples[T]{id: id, examples: examples})
}

// Classifier holds the embedded examples of every intent. The example
// vectors are immutable after Build.
type Classifier[T any] struct {
	intents  []processedIntent[T]
	embedder Embedder
}

type processedIntent[T any] struct {
	id       T
	examples [][]float32
}

// Build embeds every example phrase of every intent. It fails if the
// configuration holds no intents, or if the embedding model fails to
// initialize or to embed.
func Build[T any](ctx context.Context, cfg *Config[T]) (*Classifier[T], error) {
	if len(cfg.intents) == 0 {
		return nil, ErrNoIntents
	}

	embedder, err := cfg.source.newEmbedder()
	if err != nil {
		return nil, fmt.Errorf("initialize embedding model: %w", err)
	}

	intents := make([]processedIntent[T], 0, len(cfg.intents))
	for _, in := range cfg.intents {
		vectors, err := embedder.Embed(ctx, in.examples)
		if err != nil {
			embedder.Close()
			return nil, fmt.Errorf("embed intent examples: %w", err)
		}
		intents = append(intents, processedIntent[T]{id: in.id, examples: vectors})
	}

	return &Classifier[T]{intents: intents, embedder: embedder}, nil
}

// Classify embeds text and returns the intent owning the most similar
// example, with its score, when the score reaches the confidence floor.
// A score below the floor — or an undefined one — yields
// ErrNoConfidentMatch.
func (c *Classifier[T]) Classify(ctx context.Context, text string) (T, float64, error) {
	var zero T

	vectors, err := c.embedder.Embed(ctx, []string{text})
	if err != nil {
		return zero, 0, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return zero, 0, fmt.Errorf("embedding model returned %d vectors for one input", len(vectors))
	}

	id, score := c.findClosest(vectors[0])
	if !(score >= ConfidenceFloor) {
		return zero, score, ErrNoConfidentMatch
	}
	return id, score, nil
}

// Close releases the embedding model.
func (c *Classifier[T]) Close() error {
	return c.embedder.Close()
}

// findClosest scans every example vector of every intent. A candidate
// replaces the current best only on a strictly greater, comparable score:
// NaN candidates (for instance a zero-magnitude vector making the cosine
// ratio undefined) never displace the best, and the earliest-encountered
// maximal example wins ties. This tie-break is deliberate and tested.
func (c *Classifier[T]) findClosest(target []float32) (T, float64) {
	bestID := c.intents[0].id
	bestScore := math.Inf(-1)
	first := true

	for _, in := range c.intents {
		for _, example := range in.examples {
			score := CosineSimilarity(example, target)
			if first {
				bestID, bestScore = in.id, score
				first = false
				continue
			}
			if score > bestScore {
				bestID, bestScore = in.id, score
			}
		}
	}
	return bestID, bestScore
}

// CosineSimilarity returns dot(a,b) / (|a|*|b|), a value in [-1, 1] for
// non-degenerate inputs. A zero-magnitude operand makes the result NaN.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		magA += x * x
		magB += y * y
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
