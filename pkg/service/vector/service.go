package vector

import (
	"context"
	"sort"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/service/embedding"
)

const (
	// DefaultThreshold is the minimum cosine similarity a record must
	// reach to be considered relevant.
	DefaultThreshold = 0.7

	// DefaultLimit is the number of context records retrieved per query.
	DefaultLimit = 5

	// MaxLimit caps the retrieval count regardless of what the caller asks
	// for.
	MaxLimit = 10
)

// Service ingests content into the vector store and retrieves the
// records most similar to a query. Unlike chat generation, ingest and
// retrieval errors are surfaced to the caller: a degraded knowledge base
// should be visible, not papered over.
type Service struct {
	repo     interfaces.RecordRepository
	embedder embedding.Service
}

func New(repo interfaces.RecordRepository, embedder embedding.Service) *Service {
	return &Service{
		repo:     repo,
		embedder: embedder,
	}
}

// Ingest embeds the content and persists it as a searchable record.
func (s *Service) Ingest(ctx context.Context, content, source string, metadata map[string]string) (*model.Record, error) {
	if content == "" {
		return nil, goerr.New("content is empty")
	}

	vec, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed content for ingest")
	}

	record, err := s.repo.Create(ctx, &model.Record{
		Content:   content,
		Embedding: vec,
		Metadata:  metadata,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store record")
	}

	return record, nil
}

// Search embeds the query and returns up to limit records whose cosine
// similarity reaches threshold, most similar first. Equally similar
// records are ordered newest first. No match yields an empty slice, not
// an error.
func (s *Service) Search(ctx context.Context, query string, limit int, threshold float64) ([]*model.ScoredRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	nearest, err := s.repo.Search(ctx, vec, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "vector search failed")
	}

	results := make([]*model.ScoredRecord, 0, len(nearest))
	for _, r := range nearest {
		if r.Similarity >= threshold {
			results = append(results, r)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].Record.CreatedAt.After(results[j].Record.CreatedAt)
	})

	return results, nil
}
