package stt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hearken-ai/hearken/pkg/audio"
)

// DefaultTimeout is how long a session may run without a terminal decoder
// state before it is cancelled.
const DefaultTimeout = 20 * time.Second

// SentenceRecognizer runs one blocking recognition session per Recognize
// call against a loaded decoding model and a negotiated input device.
type SentenceRecognizer struct {
	model   Model
	device  audio.Device
	timeout time.Duration
	dumpDir string
}

// Option configures a SentenceRecognizer.
type Option func(*SentenceRecognizer)

// WithTimeout overrides the session timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *SentenceRecognizer) { r.timeout = d }
}

// WithDumpDir writes a WAV recording of each finalized utterance to dir.
func WithDumpDir(dir string) Option {
	return func(r *SentenceRecognizer) { r.dumpDir = dir }
}

// NewSentenceRecognizer binds a recognizer to a decoding model and an input
// device. The device configuration should have been negotiated for
// single-channel 16-bit capture at the model's rate.
func NewSentenceRecognizer(model Model, device audio.Device, opts ...Option) *SentenceRecognizer {
	r := &SentenceRecognizer{
		model:   model,
		device:  device,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Recognize opens a dedicated capture stream and blocks until exactly one
// terminal outcome is produced: Final, Failed, or Cancelled once the timeout
// elapses. The timeout is checked cooperatively on each chunk delivery, so
// cancellation latency is bounded by one chunk period. The stream is torn
// down the moment an outcome exists.
func (r *SentenceRecognizer) Recognize(ctx context.Context) (Result, error) {
	dec, err := r.model.NewDecoder(r.device.Config().SampleRate)
	if err != nil {
		return Result{}, fmt.Errorf("create decoder: %w", err)
	}
	defer dec.Close()

	var (
		once     sync.Once
		outcome  = make(chan Result, 1)
		start    = time.Now()
		recorded []int16
	)

	stream, err := r.device.Open(func(f audio.Frame) {
		// The timeout is inspected on every delivery, before the decoder
		// sees the chunk, so a misbehaving decoder cannot starve it.
		if time.Since(start) > r.timeout {
			once.Do(func() { outcome <- Result{Outcome: OutcomeCancelled} })
			return
		}

		samples := f.Int16Samples()
		if r.dumpDir != "" {
			recorded = append(recorded, samples...)
		}

		state, aerr := dec.AcceptWaveform(samples)
		if aerr != nil {
			// Recoverable mid-stream fault; the session keeps running.
			slog.Warn("decoder rejected chunk", slog.String("error", aerr.Error()))
			return
		}

		switch state {
		case StateFinalized:
			text, rerr := dec.FinalResult()
			if rerr != nil {
				once.Do(func() { outcome <- Result{Outcome: OutcomeFailed} })
				return
			}
			once.Do(func() { outcome <- Result{Outcome: OutcomeFinal, Text: text} })
		case StateFailed:
			once.Do(func() { outcome <- Result{Outcome: OutcomeFailed} })
		}
	})
	if err != nil {
		return Result{}, fmt.Errorf("open recognition stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return Result{}, fmt.Errorf("start recognition stream: %w", err)
	}

	select {
	case res := <-outcome:
		stream.Close()
		if r.dumpDir != "" && res.Outcome == OutcomeFinal {
			if path, derr := audio.DumpWAV(r.dumpDir, recorded, r.device.Config().SampleRate); derr != nil {
				slog.Warn("utterance dump failed", slog.String("error", derr.Error()))
			} else {
				slog.Debug("utterance recorded", slog.String("path", path))
			}
		}
		return res, nil
	case <-ctx.Done():
		stream.Close()
		return Result{}, ctx.Err()
	}
}
