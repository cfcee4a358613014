package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

type recordRepository struct {
	mu      sync.RWMutex
	records map[types.RecordID]*model.Record
}

func newRecordRepository() *recordRepository {
	return &recordRepository{
		records: make(map[types.RecordID]*model.Record),
	}
}

// copyRecord creates a deep copy of a record
func copyRecord(r *model.Record) *model.Record {
	copied := &model.Record{
		ID:        r.ID,
		Content:   r.Content,
		Source:    r.Source,
		CreatedAt: r.CreatedAt,
	}

	if r.Embedding != nil {
		copied.Embedding = make([]float32, len(r.Embedding))
		copy(copied.Embedding, r.Embedding)
	}
	if r.Metadata != nil {
		copied.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			copied.Metadata[k] = v
		}
	}

	return copied
}

func (r *recordRepository) Create(ctx context.Context, record *model.Record) (*model.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyRecord(record)
	if created.ID == "" {
		created.ID = types.NewRecordID()
	}
	created.CreatedAt = time.Now().UTC()

	r.records[created.ID] = created
	return copyRecord(created), nil
}

func (r *recordRepository) Get(ctx context.Context, id types.RecordID) (*model.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, exists := r.records[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "record not found", goerr.V("id", id))
	}

	return copyRecord(record), nil
}

func (r *recordRepository) Search(ctx context.Context, query []float32, limit int) ([]*model.ScoredRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scored := make([]*model.ScoredRecord, 0, len(r.records))
	for _, record := range r.records {
		if len(record.Embedding) == 0 {
			continue
		}
		scored = append(scored, &model.ScoredRecord{
			Record:     copyRecord(record),
			Similarity: cosineSimilarity(query, record.Embedding),
		})
	}

	// Nearest first, newest first among equals
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Record.CreatedAt.After(scored[j].Record.CreatedAt)
	})

	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}

	return scored, nil
}

func (r *recordRepository) ListWithPagination(ctx context.Context, limit, offset int) ([]*model.Record, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*model.Record, 0, len(r.records))
	for _, record := range r.records {
		all = append(all, copyRecord(record))
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	totalCount := len(all)
	if offset >= len(all) {
		return []*model.Record{}, totalCount, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], totalCount, nil
}

func (r *recordRepository) Delete(ctx context.Context, id types.RecordID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return goerr.Wrap(ErrNotFound, "record not found", goerr.V("id", id))
	}

	delete(r.records, id)
	return nil
}

// cosineSimilarity computes 1 - cosine_distance of two vectors, in [-1, 1].
// Mismatched or zero-magnitude vectors yield 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
