package tts

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hearken-ai/hearken/pkg/audio"
)

// OpenAI TTS returns PCM at a fixed 24 kHz, 16-bit, mono.
const openAISampleRate = 24000

// OpenAISynthesizer speaks through the OpenAI speech API, playing the
// synthesized PCM on the default output device. Playback runs on its own
// goroutine; the speaking flag covers synthesis and playback both.
type OpenAISynthesizer struct {
	client   *openai.Client
	model    openai.SpeechModel
	voice    openai.SpeechVoice
	speaking atomic.Bool
}

// OpenAIOption adjusts an OpenAISynthesizer.
type OpenAIOption func(*OpenAISynthesizer)

// WithVoice selects the synthesis voice. The default is alloy.
func WithVoice(voice openai.SpeechVoice) OpenAIOption {
	return func(s *OpenAISynthesizer) { s.voice = voice }
}

// WithModel selects the speech model. The default is tts-1.
func WithModel(model openai.SpeechModel) OpenAIOption {
	return func(s *OpenAISynthesizer) { s.model = model }
}

// NewOpenAISynthesizer creates a synthesizer. An empty apiKey falls back to
// the OPENAI_API_KEY environment variable.
func NewOpenAISynthesizer(apiKey string, opts ...OpenAIOption) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("speech synthesis requires an API key (set OPENAI_API_KEY)")
	}

	s := &OpenAISynthesizer{
		client: openai.NewClient(apiKey),
		model:  openai.TTSModel1,
		voice:  openai.VoiceAlloy,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Speak synthesizes text and starts playing it. It returns once synthesis
// succeeds; playback continues in the background and is observable through
// IsSpeaking. A call while already speaking queues no audio and fails.
func (s *OpenAISynthesizer) Speak(text string) error {
	if !s.speaking.CompareAndSwap(false, true) {
		return fmt.Errorf("already speaking")
	}

	samples, err := s.synthesize(context.Background(), text)
	if err != nil {
		s.speaking.Store(false)
		return err
	}

	go func() {
		defer s.speaking.Store(false)
		if err := audio.Play(samples, openAISampleRate); err != nil {
			slog.Error("speech playback failed", "error", err)
		}
	}()
	return nil
}

// IsSpeaking reports whether an utterance is still playing.
func (s *OpenAISynthesizer) IsSpeaking() (bool, error) {
	return s.speaking.Load(), nil
}

func (s *OpenAISynthesizer) synthesize(ctx context.Context, text string) ([]int16, error) {
	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatPcm,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}

	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return samples, nil
}
