package audio

import (
	"errors"
	"testing"
)

// fakeProber scripts what a device claims to support.
type fakeProber struct {
	def       StreamConfig
	defErr    error
	supported []StreamConfig
}

func (p *fakeProber) DefaultConfig() (StreamConfig, error) {
	return p.def, p.defErr
}

func (p *fakeProber) Supports(cfg StreamConfig) bool {
	for _, s := range p.supported {
		if s == cfg {
			return true
		}
	}
	return false
}

func TestNegotiatePrefersAcceptableDefault(t *testing.T) {
	def := StreamConfig{Format: FormatInt16, Channels: 1, SampleRate: 44100}
	prober := &fakeProber{def: def}

	got, err := Negotiate(prober, TargetSampleRate, FormatInt16, FormatInt32, FormatFloat32)
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if got != def {
		t.Errorf("Negotiate() = %v, want device default %v", got, def)
	}
}

func TestNegotiateScansWhenDefaultIsStereo(t *testing.T) {
	prober := &fakeProber{
		def: StreamConfig{Format: FormatInt16, Channels: 2, SampleRate: 48000},
		supported: []StreamConfig{
			{Format: FormatFloat32, Channels: 1, SampleRate: TargetSampleRate},
		},
	}

	got, err := Negotiate(prober, TargetSampleRate, FormatInt16, FormatFloat32)
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	want := StreamConfig{Format: FormatFloat32, Channels: 1, SampleRate: TargetSampleRate}
	if got != want {
		t.Errorf("Negotiate() = %v, want %v", got, want)
	}
}

func TestNegotiateRespectsFormatOrder(t *testing.T) {
	prober := &fakeProber{
		def: StreamConfig{Format: FormatFloat32, Channels: 2, SampleRate: 48000},
		supported: []StreamConfig{
			{Format: FormatInt16, Channels: 1, SampleRate: TargetSampleRate},
			{Format: FormatFloat32, Channels: 1, SampleRate: TargetSampleRate},
		},
	}

	got, err := Negotiate(prober, TargetSampleRate, FormatInt16, FormatFloat32)
	if err != nil {
		t.Fatalf("Negotiate() error = %v", err)
	}
	if got.Format != FormatInt16 {
		t.Errorf("Negotiate() picked %v, want first accepted format int16", got.Format)
	}
}

func TestNegotiateNoSupportedConfig(t *testing.T) {
	prober := &fakeProber{
		def: StreamConfig{Format: FormatInt16, Channels: 2, SampleRate: 48000},
	}

	_, err := Negotiate(prober, TargetSampleRate, FormatInt16)
	if !errors.Is(err, ErrNoSupportedConfig) {
		t.Errorf("Negotiate() error = %v, want ErrNoSupportedConfig", err)
	}
}

func TestNegotiateDefaultConfigError(t *testing.T) {
	prober := &fakeProber{defErr: errors.New("device unplugged")}

	_, err := Negotiate(prober, TargetSampleRate, FormatInt16)
	if err == nil {
		t.Fatal("Negotiate() expected error when default config is unavailable")
	}
}
