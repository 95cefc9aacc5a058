package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Play writes mono 16-bit samples to the default output device and blocks
// until playback completes.
func Play(samples []int16, sampleRate int) error {
	if err := initBackend(); err != nil {
		return err
	}

	buf := make([]int16, FramesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), len(buf), &buf)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}
	defer stream.Stop()

	for off := 0; off < len(samples); off += len(buf) {
		n := copy(buf, samples[off:])
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("write output stream: %w", err)
		}
	}
	return nil
}
