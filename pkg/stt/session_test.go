package stt_test

import (
	"context"
	"errors"
	"testing"
	"time"

	audiofake "github.com/hearken-ai/hearken/pkg/audio/fake"
	"github.com/hearken-ai/hearken/pkg/stt"
	"github.com/hearken-ai/hearken/pkg/stt/fake"
)

// feed pushes chunks on a steady cadence until the returned stop func is
// called, standing in for the audio backend's callback thread.
func feed(dev *audiofake.Device, chunk int) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for {
			select {
			case <-done:
				return
			default:
				dev.PushInt16(make([]int16, chunk))
				time.Sleep(2 * time.Millisecond)
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

func TestRecognizeFinal(t *testing.T) {
	model := &fake.Model{
		Transcript: "what time is it",
		States:     []stt.DecodingState{stt.StateRunning, stt.StateRunning, stt.StateFinalized},
	}
	dev := audiofake.NewDevice()
	rec := stt.NewSentenceRecognizer(model, dev)

	defer feed(dev, 160)()

	res, err := rec.Recognize(context.Background())
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.Outcome != stt.OutcomeFinal {
		t.Fatalf("Outcome = %v, want final", res.Outcome)
	}
	if res.Text != "what time is it" {
		t.Errorf("Text = %q, want %q", res.Text, "what time is it")
	}
}

func TestRecognizeFailed(t *testing.T) {
	model := &fake.Model{States: []stt.DecodingState{stt.StateRunning, stt.StateFailed}}
	dev := audiofake.NewDevice()
	rec := stt.NewSentenceRecognizer(model, dev)

	defer feed(dev, 160)()

	res, err := rec.Recognize(context.Background())
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.Outcome != stt.OutcomeFailed {
		t.Errorf("Outcome = %v, want failed", res.Outcome)
	}
	if res.Text != "" {
		t.Errorf("Text = %q, want empty", res.Text)
	}
}

func TestRecognizeCancelledAfterTimeout(t *testing.T) {
	// The decoder never finalizes or fails; the session must be cancelled
	// once the timeout elapses, and not before.
	model := &fake.Model{}
	dev := audiofake.NewDevice()
	timeout := 60 * time.Millisecond
	rec := stt.NewSentenceRecognizer(model, dev, stt.WithTimeout(timeout))

	defer feed(dev, 160)()

	start := time.Now()
	res, err := rec.Recognize(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.Outcome != stt.OutcomeCancelled {
		t.Fatalf("Outcome = %v, want cancelled", res.Outcome)
	}
	if elapsed < timeout {
		t.Errorf("cancelled after %v, before the %v timeout", elapsed, timeout)
	}
}

func TestRecognizeStreamTornDownAfterOutcome(t *testing.T) {
	model := &fake.Model{States: []stt.DecodingState{stt.StateFinalized}}
	dev := audiofake.NewDevice()
	rec := stt.NewSentenceRecognizer(model, dev)

	stop := feed(dev, 160)
	if _, err := rec.Recognize(context.Background()); err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	stop()

	streams := dev.Streams()
	if len(streams) != 1 {
		t.Fatalf("opened %d streams, want 1", len(streams))
	}
	if !streams[0].Closed() {
		t.Error("capture stream should be closed once an outcome is produced")
	}
}

func TestRecognizeDecoderAllocationFailure(t *testing.T) {
	model := &fake.Model{NewDecoderErr: errors.New("recognizer allocation failed")}
	rec := stt.NewSentenceRecognizer(model, audiofake.NewDevice())

	_, err := rec.Recognize(context.Background())
	if err == nil {
		t.Fatal("Recognize() expected allocation error")
	}
}

func TestRecognizeMidStreamErrorIsNotTerminal(t *testing.T) {
	// Chunk-level decode errors are recoverable: the session must keep
	// running and still reach the timeout.
	model := &fake.Model{AcceptErr: errors.New("bad chunk")}
	dev := audiofake.NewDevice()
	rec := stt.NewSentenceRecognizer(model, dev, stt.WithTimeout(40*time.Millisecond))

	defer feed(dev, 160)()

	res, err := rec.Recognize(context.Background())
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if res.Outcome != stt.OutcomeCancelled {
		t.Errorf("Outcome = %v, want cancelled", res.Outcome)
	}
}

func TestRecognizeContextCancellation(t *testing.T) {
	model := &fake.Model{}
	dev := audiofake.NewDevice()
	rec := stt.NewSentenceRecognizer(model, dev)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := rec.Recognize(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Recognize() error = %v, want context.Canceled", err)
	}
}
