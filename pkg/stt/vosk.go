package stt

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	vosk "github.com/alphacep/vosk-api/go"
)

// VoskModel wraps a Vosk acoustic model directory. Loading can take several
// seconds; load once and reuse across sessions.
type VoskModel struct {
	model *vosk.VoskModel
}

// LoadVoskModel loads the decoding model from a directory.
func LoadVoskModel(path string) (*VoskModel, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("decoding model directory: %w", err)
	}
	model, err := vosk.NewModel(path)
	if err != nil {
		return nil, fmt.Errorf("load decoding model %q: %w", path, err)
	}
	return &VoskModel{model: model}, nil
}

// NewDecoder allocates a fresh recognizer for one utterance.
func (m *VoskModel) NewDecoder(sampleRate int) (Decoder, error) {
	rec, err := vosk.NewRecognizer(m.model, float64(sampleRate))
	if err != nil {
		return nil, fmt.Errorf("create recognizer: %w", err)
	}
	return &voskDecoder{rec: rec}, nil
}

// Close frees the model. No decoder may be in flight.
func (m *VoskModel) Close() {
	m.model.Free()
}

type voskDecoder struct {
	rec *vosk.VoskRecognizer
}

type voskResult struct {
	Text string `json:"text"`
}

func (d *voskDecoder) AcceptWaveform(samples []int16) (DecodingState, error) {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}

	switch state := d.rec.AcceptWaveform(pcm); {
	case state > 0:
		return StateFinalized, nil
	case state < 0:
		return StateFailed, nil
	default:
		return StateRunning, nil
	}
}

func (d *voskDecoder) FinalResult() (string, error) {
	var result voskResult
	if err := json.Unmarshal([]byte(d.rec.Result()), &result); err != nil {
		return "", fmt.Errorf("parse recognizer result: %w", err)
	}
	return result.Text, nil
}

func (d *voskDecoder) Close() {
	d.rec.Free()
}
