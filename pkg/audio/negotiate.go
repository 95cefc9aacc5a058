package audio

import (
	"errors"
	"fmt"
)

// TargetSampleRate is the rate the spotting and decoding models are trained
// for. Negotiation falls back to it when the device default is unusable.
const TargetSampleRate = 16000

// ErrNoSupportedConfig indicates the input device supports none of the
// formats a model accepts at a usable channel count and sample rate.
var ErrNoSupportedConfig = errors.New("no supported input configuration found")

// StreamConfig describes a negotiated input stream format.
type StreamConfig struct {
	Format     SampleFormat
	Channels   int
	SampleRate int
}

func (c StreamConfig) String() string {
	return fmt.Sprintf("%s/%dch/%dHz", c.Format, c.Channels, c.SampleRate)
}

// ConfigProber exposes what an input device claims to support. The portaudio
// Device implements it; tests substitute their own.
type ConfigProber interface {
	// DefaultConfig returns the device's default input configuration.
	DefaultConfig() (StreamConfig, error)

	// Supports reports whether the device can open a stream with the given
	// configuration.
	Supports(StreamConfig) bool
}

// Negotiate selects an input configuration compatible with a model that
// accepts the given sample formats and is trained at wantRate.
//
// The device default wins when it is already single-channel and in an
// accepted format. Otherwise each accepted format is probed for
// single-channel support at wantRate, in order. ErrNoSupportedConfig is
// returned when nothing matches.
func Negotiate(p ConfigProber, wantRate int, accepted ...SampleFormat) (StreamConfig, error) {
	if len(accepted) == 0 {
		return StreamConfig{}, fmt.Errorf("%w: no accepted sample formats", ErrNoSupportedConfig)
	}

	def, err := p.DefaultConfig()
	if err != nil {
		return StreamConfig{}, fmt.Errorf("default input config: %w", err)
	}

	if def.Channels == 1 && formatAccepted(def.Format, accepted) {
		return def, nil
	}

	for _, format := range accepted {
		cfg := StreamConfig{Format: format, Channels: 1, SampleRate: wantRate}
		if p.Supports(cfg) {
			return cfg, nil
		}
	}

	return StreamConfig{}, ErrNoSupportedConfig
}

func formatAccepted(f SampleFormat, accepted []SampleFormat) bool {
	for _, a := range accepted {
		if f == a {
			return true
		}
	}
	return false
}
