package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DumpWAV writes 16-bit PCM samples to a timestamped WAV file under dir and
// returns the written path. Used to keep recordings of recognized utterances
// for offline inspection.
func DumpWAV(dir string, samples []int16, sampleRate int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dump directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("utterance-%s.wav", time.Now().Format("20060102-150405.000")))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create wav file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return "", fmt.Errorf("write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("finalize wav file: %w", err)
	}
	return path, nil
}
