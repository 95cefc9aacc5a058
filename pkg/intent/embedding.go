package intent

import "context"

// Embedder maps texts to fixed-length vectors capturing semantic meaning.
type Embedder interface {
	// Embed returns one vector per input text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Close releases the model.
	Close() error
}

// ModelSource selects the embedding engine at configuration time: either a
// set of user-supplied local model artifacts or a remote embeddings API.
// The two variants are LocalFiles and Remote; the interface is sealed.
type ModelSource interface {
	newEmbedder() (Embedder, error)
}

// LocalFiles points at the five artifacts of a local embedding model: the
// network weights plus four structured text files describing the tokenizer
// and model configuration.
type LocalFiles struct {
	Weights          string // ONNX network weights
	Tokenizer        string // tokenizer.json
	Config           string // config.json
	SpecialTokensMap string // special_tokens_map.json
	TokenizerConfig  string // tokenizer_config.json
}

func (f LocalFiles) newEmbedder() (Embedder, error) {
	return newLocalEmbedder(f)
}

// Remote embeds through the OpenAI embeddings API.
type Remote struct {
	// Model defaults to text-embedding-3-small.
	Model string
	// APIKey defaults to the OPENAI_API_KEY environment variable.
	APIKey string
}

func (r Remote) newEmbedder() (Embedder, error) {
	return newRemoteEmbedder(r)
}

// EmbedderSource adapts a ready-made Embedder into a ModelSource. Intended
// for tests and for integrators with their own embedding engine.
type EmbedderSource struct {
	Embedder Embedder
	// Err, when set, makes classifier construction fail.
	Err error
}

func (s EmbedderSource) newEmbedder() (Embedder, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Embedder, nil
}
