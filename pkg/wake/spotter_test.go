package wake

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	audiofake "github.com/hearken-ai/hearken/pkg/audio/fake"
	"github.com/hearken-ai/hearken/pkg/wake/fake"
)

func writeProfile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("profile-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func startedSpotter(t *testing.T, model *fake.Model) (*Spotter, *audiofake.Device, *Listener) {
	t.Helper()
	dev := audiofake.NewDevice()
	s := NewSpotter(model, dev)
	if err := s.AddProfileFromFile("pizza", writeProfile(t, "pizza.onnx")); err != nil {
		t.Fatalf("AddProfileFromFile() error = %v", err)
	}
	listener, err := s.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, dev, listener
}

func TestSpotterStartWithoutProfiles(t *testing.T) {
	s := NewSpotter(fake.NewModel(160), audiofake.NewDevice())

	_, err := s.Start()
	if !errors.Is(err, ErrNoProfiles) {
		t.Errorf("Start() error = %v, want ErrNoProfiles", err)
	}
}

func TestSpotterStartTwice(t *testing.T) {
	s, _, _ := startedSpotter(t, fake.NewModel(160))

	if _, err := s.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestSpotterAddProfileUnreadableFile(t *testing.T) {
	s := NewSpotter(fake.NewModel(160), audiofake.NewDevice())

	err := s.AddProfileFromFile("ghost", filepath.Join(t.TempDir(), "missing.onnx"))
	if err == nil {
		t.Fatal("AddProfileFromFile() expected error for missing file")
	}
}

func TestSpotterFrameAccumulation(t *testing.T) {
	model := fake.NewModel(160)
	s, dev, _ := startedSpotter(t, model)

	// Chunks smaller than one frame, summing to exactly one frame: the
	// model is scored once and no samples are left over.
	dev.PushInt16(make([]int16, 50))
	dev.PushInt16(make([]int16, 50))
	dev.PushInt16(make([]int16, 60))

	if got := model.ScoreCalls(); got != 1 {
		t.Errorf("ScoreCalls() = %d, want 1", got)
	}
	if got := len(s.buf); got != 0 {
		t.Errorf("leftover samples = %d, want 0", got)
	}

	// A further chunk starts a fresh accumulation.
	dev.PushInt16(make([]int16, 30))
	if got := model.ScoreCalls(); got != 1 {
		t.Errorf("ScoreCalls() after partial chunk = %d, want 1", got)
	}
	if got := len(s.buf); got != 30 {
		t.Errorf("buffered samples = %d, want 30", got)
	}
}

func TestSpotterScoresOneFramePerIteration(t *testing.T) {
	model := fake.NewModel(160)
	_, dev, _ := startedSpotter(t, model)

	// One oversized chunk holding three full frames plus a remainder.
	dev.PushInt16(make([]int16, 3*160+40))

	if got := model.ScoreCalls(); got != 3 {
		t.Errorf("ScoreCalls() = %d, want 3", got)
	}
}

func TestSpotterDetectionReachesListener(t *testing.T) {
	model := fake.NewModel(160)
	model.DetectFn = func(frame []float32) (string, bool) { return "pizza", true }
	_, dev, listener := startedSpotter(t, model)

	dev.PushInt16(make([]int16, 160))

	got := make(chan string, 1)
	go func() {
		name, err := listener.Listen()
		if err != nil {
			t.Errorf("Listen() error = %v", err)
		}
		got <- name
	}()

	select {
	case name := <-got:
		if name != "pizza" {
			t.Errorf("Listen() = %q, want %q", name, "pizza")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for detection")
	}
}

func TestSpotterDetectionsDoNotBlockAudioThread(t *testing.T) {
	model := fake.NewModel(160)
	model.DetectFn = func(frame []float32) (string, bool) { return "pizza", true }
	_, dev, listener := startedSpotter(t, model)

	// Nobody is consuming the listener; pushes must still return.
	for i := 0; i < 100; i++ {
		dev.PushInt16(make([]int16, 160))
	}

	for i := 0; i < 100; i++ {
		if _, err := listener.Listen(); err != nil {
			t.Fatalf("Listen() error = %v at detection %d", err, i)
		}
	}
}

func TestSpotterCloseDisconnectsListener(t *testing.T) {
	model := fake.NewModel(160)
	s, _, listener := startedSpotter(t, model)

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	_, err := listener.Listen()
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Listen() after Close error = %v, want ErrClosed", err)
	}
}

func TestSpotterSuspendResume(t *testing.T) {
	model := fake.NewModel(160)
	s, dev, _ := startedSpotter(t, model)

	stream := dev.Streams()[0]
	if !stream.Running() {
		t.Fatal("stream should be running after Start")
	}

	if err := s.Suspend(); err != nil {
		t.Fatalf("Suspend() error = %v", err)
	}
	if stream.Running() {
		t.Error("stream should be stopped while suspended")
	}

	// Frames delivered while suspended are ignored by the fake device.
	dev.PushInt16(make([]int16, 160))
	if got := model.ScoreCalls(); got != 0 {
		t.Errorf("ScoreCalls() while suspended = %d, want 0", got)
	}

	if err := s.Resume(); err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if !stream.Running() {
		t.Error("stream should be running after Resume")
	}

	dev.PushInt16(make([]int16, 160))
	if got := model.ScoreCalls(); got != 1 {
		t.Errorf("ScoreCalls() after resume = %d, want 1", got)
	}
}
