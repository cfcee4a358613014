package model

import (
	"time"

	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// EmbeddingDimension is the dimension of the embedding vector.
// Gemini text-embedding-004 uses 768 dimensions.
const EmbeddingDimension = 768

// Record is an ingested piece of content together with its embedding
// vector and free-form metadata
type Record struct {
	ID        types.RecordID
	Content   string
	Embedding []float32
	Metadata  map[string]string
	Source    string
	CreatedAt time.Time
}

// ScoredRecord pairs a record with its cosine similarity to a query vector.
// Similarity is 1 - cosine_distance, in [-1, 1], higher is more similar.
type ScoredRecord struct {
	Record     *Record
	Similarity float64
}
