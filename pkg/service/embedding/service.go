package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
)

// ErrEmbeddingFailure indicates the embedding backend returned no usable
// vector. Retrieval cannot proceed without one, so callers surface this
// as an explicit error instead of degrading silently.
var ErrEmbeddingFailure = goerr.New("embedding generation failed")

// Service converts text into embedding vectors for vector search.
type Service interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

type client struct {
	llmClient gollem.LLMClient
}

func New(llmClient gollem.LLMClient) Service {
	return &client{llmClient: llmClient}
}

func (c *client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings, err := c.llmClient.GenerateEmbedding(ctx, model.EmbeddingDimension, texts)
	if err != nil {
		return nil, goerr.Wrap(ErrEmbeddingFailure, "embedding backend call failed", goerr.V("cause", err.Error()))
	}

	if len(embeddings) != len(texts) {
		return nil, goerr.Wrap(ErrEmbeddingFailure, "unexpected embedding count",
			goerr.V("expected", len(texts)),
			goerr.V("actual", len(embeddings)))
	}

	// Convert float64 to float32
	results := make([][]float32, len(embeddings))
	for i, emb := range embeddings {
		if len(emb) == 0 {
			return nil, goerr.Wrap(ErrEmbeddingFailure, "empty embedding returned", goerr.V("index", i))
		}
		vec := make([]float32, len(emb))
		for j, v := range emb {
			vec[j] = float32(v)
		}
		results[i] = vec
	}

	return results, nil
}
