package audio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/wav"
	"github.com/matryer/is"
)

func TestDumpWAVRoundTrip(t *testing.T) {
	is := is.New(t)

	dir := t.TempDir()
	samples := []int16{0, 100, -100, 32767, -32768}

	path, err := DumpWAV(dir, samples, 16000)
	is.NoErr(err)
	is.True(strings.HasPrefix(filepath.Base(path), "utterance-")) // timestamped name

	f, err := os.Open(path)
	is.NoErr(err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	is.NoErr(err)
	is.Equal(int(dec.SampleRate), 16000)
	is.Equal(dec.NumChans, uint16(1))

	is.Equal(len(buf.Data), len(samples))
	for i, s := range samples {
		is.Equal(buf.Data[i], int(s))
	}
}

func TestDumpWAVCreatesDirectory(t *testing.T) {
	is := is.New(t)

	dir := filepath.Join(t.TempDir(), "dumps", "nested")
	path, err := DumpWAV(dir, []int16{1, 2, 3}, 16000)
	is.NoErr(err)

	_, err = os.Stat(path)
	is.NoErr(err)
}
