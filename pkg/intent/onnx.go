package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/hearken-ai/hearken/internal/onnxenv"
)

// Standard tensor names for sentence-transformer ONNX exports.
const (
	inputIDsName      = "input_ids"
	attentionMaskName = "attention_mask"
	tokenTypeIDsName  = "token_type_ids"
	hiddenStateName   = "last_hidden_state"
)

const defaultMaxTokens = 256

// modelConfig is the subset of config.json the embedder needs.
type modelConfig struct {
	HiddenSize            int `json:"hidden_size"`
	MaxPositionEmbeddings int `json:"max_position_embeddings"`
}

// tokenizerConfig is the subset of tokenizer_config.json the embedder needs.
type tokenizerConfig struct {
	ModelMaxLength float64 `json:"model_max_length"`
}

// localEmbedder runs a user-supplied sentence-embedding network with ONNX
// runtime, tokenizing with the model's own HuggingFace tokenizer. Token
// vectors are mean-pooled into one sentence vector per text.
type localEmbedder struct {
	session *ort.DynamicAdvancedSession
	tk      *tokenizer.Tokenizer
	hidden  int
	maxLen  int
}

func newLocalEmbedder(files LocalFiles) (*localEmbedder, error) {
	if err := onnxenv.Ensure(); err != nil {
		return nil, fmt.Errorf("initialize ONNX runtime: %w", err)
	}

	weights, err := os.ReadFile(files.Weights)
	if err != nil {
		return nil, fmt.Errorf("read embedding weights: %w", err)
	}

	var cfg modelConfig
	if err := readJSONFile(files.Config, &cfg); err != nil {
		return nil, fmt.Errorf("read model config: %w", err)
	}
	if cfg.HiddenSize <= 0 {
		return nil, fmt.Errorf("model config %q: missing hidden_size", files.Config)
	}

	// special_tokens_map.json carries no fields we act on, but a malformed
	// artifact set should fail at build time, not mid-inference.
	var specialTokens map[string]any
	if err := readJSONFile(files.SpecialTokensMap, &specialTokens); err != nil {
		return nil, fmt.Errorf("read special tokens map: %w", err)
	}

	var tkCfg tokenizerConfig
	if err := readJSONFile(files.TokenizerConfig, &tkCfg); err != nil {
		return nil, fmt.Errorf("read tokenizer config: %w", err)
	}

	maxLen := defaultMaxTokens
	if n := int(tkCfg.ModelMaxLength); n > 0 && n < maxLen {
		maxLen = n
	}
	if cfg.MaxPositionEmbeddings > 0 && cfg.MaxPositionEmbeddings < maxLen {
		maxLen = cfg.MaxPositionEmbeddings
	}

	tk, err := pretrained.FromFile(files.Tokenizer)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(weights,
		[]string{inputIDsName, attentionMaskName, tokenTypeIDsName},
		[]string{hiddenStateName}, nil)
	if err != nil {
		return nil, fmt.Errorf("create embedding session: %w", err)
	}

	return &localEmbedder{
		session: session,
		tk:      tk,
		hidden:  cfg.HiddenSize,
		maxLen:  maxLen,
	}, nil
}

func (e *localEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		vec, err := e.embedOne(text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (e *localEmbedder) embedOne(text string) ([]float32, error) {
	enc, err := e.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}

	ids := enc.GetIds()
	if len(ids) > e.maxLen {
		ids = ids[:e.maxLen]
	}
	n := len(ids)
	if n == 0 {
		return make([]float32, e.hidden), nil
	}

	inputIDs := make([]int64, n)
	mask := make([]int64, n)
	types := make([]int64, n)
	for i, id := range ids {
		inputIDs[i] = int64(id)
		mask[i] = 1
	}

	shape := ort.NewShape(1, int64(n))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()
	maskTensor, err := ort.NewTensor(shape, mask)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()
	typesTensor, err := ort.NewTensor(shape, types)
	if err != nil {
		return nil, fmt.Errorf("create token_type_ids tensor: %w", err)
	}
	defer typesTensor.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(n), int64(e.hidden)))
	if err != nil {
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	defer output.Destroy()

	err = e.session.Run(
		[]ort.Value{idsTensor, maskTensor, typesTensor},
		[]ort.Value{output})
	if err != nil {
		return nil, fmt.Errorf("embedding inference: %w", err)
	}

	return meanPool(output.GetData(), n, e.hidden), nil
}

// meanPool averages the n token vectors of a [1, n, hidden] output into one
// sentence vector.
func meanPool(data []float32, n, hidden int) []float32 {
	vec := make([]float32, hidden)
	for t := 0; t < n; t++ {
		row := data[t*hidden : (t+1)*hidden]
		for i, v := range row {
			vec[i] += v
		}
	}
	inv := 1.0 / float32(n)
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

func (e *localEmbedder) Close() error {
	e.session.Destroy()
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
