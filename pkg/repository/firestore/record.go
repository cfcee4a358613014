package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

const recordsCollection = "records"

// distanceField is where FindNearest writes the cosine distance of each
// result document.
const distanceField = "vector_distance"

// recordDoc is the Firestore document representation of model.Record.
// Embedding is stored as firestore.Vector32 so that FindNearest vector
// search works.
type recordDoc struct {
	ID        types.RecordID     `firestore:"ID"`
	Content   string             `firestore:"Content"`
	Embedding firestore.Vector32 `firestore:"Embedding,omitempty"`
	Metadata  map[string]string  `firestore:"Metadata,omitempty"`
	Source    string             `firestore:"Source,omitempty"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
}

// scoredRecordDoc adds the distance field populated by FindNearest.
type scoredRecordDoc struct {
	recordDoc
	Distance float64 `firestore:"vector_distance"`
}

func toRecordDoc(rec *model.Record) *recordDoc {
	doc := &recordDoc{
		ID:        rec.ID,
		Content:   rec.Content,
		Metadata:  rec.Metadata,
		Source:    rec.Source,
		CreatedAt: rec.CreatedAt,
	}
	if len(rec.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(rec.Embedding)
	}
	return doc
}

func fromRecordDoc(d *recordDoc) *model.Record {
	rec := &model.Record{
		ID:        d.ID,
		Content:   d.Content,
		Metadata:  d.Metadata,
		Source:    d.Source,
		CreatedAt: d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		rec.Embedding = []float32(d.Embedding)
	}
	return rec
}

type recordRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newRecordRepository(client *firestore.Client) *recordRepository {
	return &recordRepository{client: client}
}

func (r *recordRepository) collection() *firestore.CollectionRef {
	name := recordsCollection
	if r.collectionPrefix != "" {
		name = r.collectionPrefix + "_" + name
	}
	return r.client.Collection(name)
}

func (r *recordRepository) Create(ctx context.Context, record *model.Record) (*model.Record, error) {
	created := *record
	if created.ID == "" {
		created.ID = types.NewRecordID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}

	docRef := r.collection().Doc(created.ID.String())
	if _, err := docRef.Set(ctx, toRecordDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create record", goerr.V("recordID", created.ID))
	}

	return &created, nil
}

func (r *recordRepository) Get(ctx context.Context, id types.RecordID) (*model.Record, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "record not found", goerr.V("recordID", id))
		}
		return nil, goerr.Wrap(err, "failed to get record", goerr.V("recordID", id))
	}

	var d recordDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal record", goerr.V("recordID", id))
	}

	return fromRecordDoc(&d), nil
}

// Search returns up to limit records nearest to the query vector with
// their cosine similarity. Firestore reports cosine distance, so
// similarity is 1 - distance.
func (r *recordRepository) Search(ctx context.Context, query []float32, limit int) ([]*model.ScoredRecord, error) {
	vq := r.collection().FindNearest("Embedding", firestore.Vector32(query), limit,
		firestore.DistanceMeasureCosine, &firestore.FindNearestOptions{
			DistanceResultField: distanceField,
		})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	results := make([]*model.ScoredRecord, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate record vector search results")
		}

		var d scoredRecordDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal record from vector search")
		}

		results = append(results, &model.ScoredRecord{
			Record:     fromRecordDoc(&d.recordDoc),
			Similarity: 1 - d.Distance,
		})
	}

	return results, nil
}

func (r *recordRepository) ListWithPagination(ctx context.Context, limit, offset int) ([]*model.Record, int, error) {
	// Get total count first
	allDocs, err := r.collection().Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, goerr.Wrap(err, "failed to count records")
	}
	totalCount := len(allDocs)

	iter := r.collection().
		OrderBy("CreatedAt", firestore.Desc).
		Offset(offset).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	records := make([]*model.Record, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, goerr.Wrap(err, "failed to iterate records")
		}

		var d recordDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, 0, goerr.Wrap(err, "failed to unmarshal record")
		}

		records = append(records, fromRecordDoc(&d))
	}

	return records, totalCount, nil
}

func (r *recordRepository) Delete(ctx context.Context, id types.RecordID) error {
	docRef := r.collection().Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "record not found", goerr.V("recordID", id))
		}
		return goerr.Wrap(err, "failed to get record", goerr.V("recordID", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete record", goerr.V("recordID", id))
	}

	return nil
}
