// Package assistant orchestrates the full voice cycle: wakeword spotting,
// speech-to-text, intent classification, and a speaking gate around the
// synthesizer. It owns no policy: every cycle produces exactly one Query or
// one error, and the caller drives the loop.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hearken-ai/hearken/pkg/intent"
	"github.com/hearken-ai/hearken/pkg/stt"
	"github.com/hearken-ai/hearken/pkg/tts"
	"github.com/hearken-ai/hearken/pkg/wake"
)

// DefaultPollInterval is how often the speaking gate re-checks the
// synthesizer.
const DefaultPollInterval = 100 * time.Millisecond

// Recognizer runs one blocking speech-to-text session per call.
// *stt.SentenceRecognizer satisfies it.
type Recognizer interface {
	Recognize(ctx context.Context) (stt.Result, error)
}

// Query is the product of one successful assistant cycle. Intent is nil when
// the wakeword's profile is not flagged for listening, so the detection alone
// is the query.
type Query[T any] struct {
	Wakeword string
	Intent   *T
}

// Config collects wakewords and intents before Start. The intent identifier
// type T is caller-supplied.
type Config[T any] struct {
	spotter    *wake.Spotter
	recognizer Recognizer
	synth      tts.Synthesizer
	intents    *intent.Config[T]
	listen     map[string]bool
	poll       time.Duration
}

// Option configures assistant construction.
type Option[T any] func(*Config[T])

// WithPollInterval overrides the speaking-gate poll interval.
func WithPollInterval[T any](d time.Duration) Option[T] {
	return func(c *Config[T]) { c.poll = d }
}

// NewConfig wires the assistant's components. The spotter and recognizer
// must share the input device through the spotter's Suspend/Resume; the
// assistant never opens both capture streams at once.
func NewConfig[T any](spotter *wake.Spotter, recognizer Recognizer, synth tts.Synthesizer, source intent.ModelSource, opts ...Option[T]) *Config[T] {
	c := &Config[T]{
		spotter:    spotter,
		recognizer: recognizer,
		synth:      synth,
		intents:    intent.NewConfig[T](source),
		listen:     make(map[string]bool),
		poll:       DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddWakewordFromFile registers a wakeword profile. When listen is false a
// detection completes the cycle by itself, without a speech-to-text session.
func (c *Config[T]) AddWakewordFromFile(name, path string, listen bool) error {
	if err := c.spotter.AddProfileFromFile(name, path); err != nil {
		return err
	}
	c.listen[name] = listen
	return nil
}

// AddIntent registers an intent with one or more example phrases.
func (c *Config[T]) AddIntent(id T, examples ...string) {
	c.intents.AddIntent(id, examples...)
}

// Start builds the intent classifier and begins wakeword spotting. It fails
// if no intents or no wakewords were registered.
func (c *Config[T]) Start(ctx context.Context) (*Assistant[T], error) {
	classifier, err := intent.Build(ctx, c.intents)
	if err != nil {
		return nil, fmt.Errorf("build intent classifier: %w", err)
	}

	listener, err := c.spotter.Start()
	if err != nil {
		classifier.Close()
		return nil, fmt.Errorf("start wakeword spotting: %w", err)
	}

	return &Assistant[T]{
		spotter:    c.spotter,
		listener:   listener,
		recognizer: c.recognizer,
		synth:      c.synth,
		classifier: classifier,
		listen:     c.listen,
		poll:       c.poll,
	}, nil
}

// Assistant runs voice cycles. Listen is not safe for concurrent use; one
// goroutine drives the loop.
type Assistant[T any] struct {
	spotter    *wake.Spotter
	listener   *wake.Listener
	recognizer Recognizer
	synth      tts.Synthesizer
	classifier *intent.Classifier[T]
	listen     map[string]bool
	poll       time.Duration
}

// Listen blocks until one cycle completes. A detection that arrives while
// the synthesizer is speaking is discarded after playback ends and a fresh
// wakeword is required. Per-cycle failures return a *CycleError tagging the
// wakeword; ErrListenerClosed means the capture stream died for good.
func (a *Assistant[T]) Listen(ctx context.Context) (Query[T], error) {
	for {
		name, err := a.listener.Listen()
		if err != nil {
			return Query[T]{}, ErrListenerClosed
		}

		speaking, err := a.synth.IsSpeaking()
		if err != nil {
			return Query[T]{}, &CycleError{Wakeword: name, Err: fmt.Errorf("query synthesizer state: %w", err)}
		}
		if speaking {
			// The microphone heard our own voice. Drop the detection and
			// demand a fresh one once playback ends.
			slog.Debug("wakeword during playback discarded", slog.String("wakeword", name))
			if err := a.FinishSpeaking(); err != nil {
				return Query[T]{}, &CycleError{Wakeword: name, Err: err}
			}
			continue
		}

		if !a.listen[name] {
			return Query[T]{Wakeword: name}, nil
		}

		text, err := a.recognize(ctx)
		if err != nil {
			return Query[T]{}, &CycleError{Wakeword: name, Err: err}
		}

		id, score, err := a.classifier.Classify(ctx, text)
		if err != nil {
			return Query[T]{}, &CycleError{Wakeword: name, Err: fmt.Errorf("classify %q: %w", text, err)}
		}

		slog.Info("query classified",
			slog.String("wakeword", name),
			slog.String("text", text),
			slog.Float64("score", score))
		return Query[T]{Wakeword: name, Intent: &id}, nil
	}
}

// recognize runs one speech-to-text session with exclusive device ownership.
func (a *Assistant[T]) recognize(ctx context.Context) (string, error) {
	if err := a.spotter.Suspend(); err != nil {
		return "", fmt.Errorf("suspend wakeword capture: %w", err)
	}
	res, err := a.recognizer.Recognize(ctx)
	if rerr := a.spotter.Resume(); rerr != nil && err == nil {
		err = fmt.Errorf("resume wakeword capture: %w", rerr)
	}
	if err != nil {
		return "", err
	}

	switch res.Outcome {
	case stt.OutcomeFinal:
		return res.Text, nil
	case stt.OutcomeCancelled:
		return "", ErrRecognitionTimeout
	default:
		return "", ErrRecognitionFailed
	}
}

// Speak starts speaking text through the synthesizer.
func (a *Assistant[T]) Speak(text string) error {
	return a.synth.Speak(text)
}

// FinishSpeaking blocks until the synthesizer reports it is no longer
// speaking, polling at the configured interval.
func (a *Assistant[T]) FinishSpeaking() error {
	for {
		speaking, err := a.synth.IsSpeaking()
		if err != nil {
			return fmt.Errorf("query synthesizer state: %w", err)
		}
		if !speaking {
			return nil
		}
		time.Sleep(a.poll)
	}
}

// Close stops wakeword spotting and releases the classifier.
func (a *Assistant[T]) Close() error {
	err := a.spotter.Close()
	if cerr := a.classifier.Close(); err == nil {
		err = cerr
	}
	return err
}
