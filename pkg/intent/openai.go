package intent

import (
	"context"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

const defaultRemoteModel = string(openai.SmallEmbedding3)

// remoteEmbedder embeds through the OpenAI embeddings API.
type remoteEmbedder struct {
	client *openai.Client
	model  string
}

func newRemoteEmbedder(cfg Remote) (*remoteEmbedder, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("remote embedding model requires an API key (set OPENAI_API_KEY)")
	}

	model := cfg.Model
	if model == "" {
		model = defaultRemoteModel
	}

	return &remoteEmbedder{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

func (e *remoteEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response holds %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embeddings response index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

func (e *remoteEmbedder) Close() error {
	return nil
}
