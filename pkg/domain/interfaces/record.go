package interfaces

import (
	"context"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// RecordRepository persists embedding records and answers nearest-neighbor
// queries. Search returns up to limit records nearest to the query vector
// together with their cosine similarity; threshold filtering and the final
// ordering contract are applied by the vector service on top.
type RecordRepository interface {
	Create(ctx context.Context, record *model.Record) (*model.Record, error)
	Get(ctx context.Context, id types.RecordID) (*model.Record, error)
	Search(ctx context.Context, query []float32, limit int) ([]*model.ScoredRecord, error)
	ListWithPagination(ctx context.Context, limit, offset int) ([]*model.Record, int, error)
	Delete(ctx context.Context, id types.RecordID) error
}
