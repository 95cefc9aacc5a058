package wake

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hearken-ai/hearken/internal/onnxenv"
)

const (
	// DefaultSamplesPerFrame is 80 ms at 16 kHz, the frame size the stock
	// spotting networks are trained on.
	DefaultSamplesPerFrame = 1280

	// DefaultThreshold is the minimum score treated as a detection.
	DefaultThreshold = 0.5

	// DefaultCooldownFrames suppresses repeat detections of the same profile
	// for ~2 s after a hit, since consecutive frames of one utterance keep
	// scoring high.
	DefaultCooldownFrames = 25
)

// ONNXModelConfig configures an ONNX-backed spotting model.
type ONNXModelConfig struct {
	SamplesPerFrame int
	Threshold       float32
	CooldownFrames  int
	InputName       string // defaults to "input"
	OutputName      string // defaults to "output"
}

// ONNXModel scores frames against one ONNX network per profile. Each profile
// artifact is a complete spotting network producing a single score in [0, 1]
// for a fixed-size frame.
type ONNXModel struct {
	cfg ONNXModelConfig

	mu       sync.Mutex
	profiles []*onnxProfile
}

type onnxProfile struct {
	name     string
	session  *ort.AdvancedSession
	input    *ort.Tensor[float32]
	output   *ort.Tensor[float32]
	cooldown int
}

// NewONNXModel creates an empty spotting model; profiles are added via
// AddProfile (normally through Spotter.AddProfileFromFile).
func NewONNXModel(cfg ONNXModelConfig) *ONNXModel {
	if cfg.SamplesPerFrame <= 0 {
		cfg.SamplesPerFrame = DefaultSamplesPerFrame
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.CooldownFrames <= 0 {
		cfg.CooldownFrames = DefaultCooldownFrames
	}
	if cfg.InputName == "" {
		cfg.InputName = "input"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output"
	}
	return &ONNXModel{cfg: cfg}
}

// AddProfile loads a spotting network from the artifact bytes. The session
// and its tensors are bound once and reused for every Score call.
func (m *ONNXModel) AddProfile(name string, data []byte) error {
	if err := onnxenv.Ensure(); err != nil {
		return fmt.Errorf("initialize ONNX runtime: %w", err)
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(m.cfg.SamplesPerFrame)))
	if err != nil {
		return fmt.Errorf("create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		input.Destroy()
		return fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSessionWithONNXData(data,
		[]string{m.cfg.InputName}, []string{m.cfg.OutputName},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return fmt.Errorf("create spotting session: %w", err)
	}

	m.mu.Lock()
	m.profiles = append(m.profiles, &onnxProfile{
		name:    name,
		session: session,
		input:   input,
		output:  output,
	})
	m.mu.Unlock()
	return nil
}

// SamplesPerFrame implements Model.
func (m *ONNXModel) SamplesPerFrame() int {
	return m.cfg.SamplesPerFrame
}

// Score evaluates one frame against every profile and reports the first
// profile whose score reaches the threshold. At most one detection per call.
func (m *ONNXModel) Score(frame []float32) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.profiles {
		if p.cooldown > 0 {
			p.cooldown--
			continue
		}

		copy(p.input.GetData(), frame)
		if err := p.session.Run(); err != nil {
			// Inference failures are per-frame; the stream keeps running.
			continue
		}
		if score := p.output.GetData()[0]; score >= m.cfg.Threshold {
			p.cooldown = m.cfg.CooldownFrames
			return p.name, true
		}
	}
	return "", false
}

// Close releases all profile sessions and tensors.
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.profiles {
		p.session.Destroy()
		p.input.Destroy()
		p.output.Destroy()
	}
	m.profiles = nil
	return nil
}
