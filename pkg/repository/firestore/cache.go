package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
)

const cacheCollection = "cache"

type cacheDoc struct {
	Key       string    `firestore:"Key"`
	Value     string    `firestore:"Value"`
	ExpiresAt time.Time `firestore:"ExpiresAt"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

type cacheRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newCacheRepository(client *firestore.Client) *cacheRepository {
	return &cacheRepository{client: client}
}

func (r *cacheRepository) collection() *firestore.CollectionRef {
	name := cacheCollection
	if r.collectionPrefix != "" {
		name = r.collectionPrefix + "_" + name
	}
	return r.client.Collection(name)
}

func (r *cacheRepository) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	docRef := r.collection().Doc(key)
	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrCacheMiss, "cache entry not found", goerr.V("key", key))
		}
		return nil, goerr.Wrap(err, "failed to get cache entry", goerr.V("key", key))
	}

	var d cacheDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal cache entry", goerr.V("key", key))
	}

	entry := &model.CacheEntry{
		Key:       d.Key,
		Value:     d.Value,
		ExpiresAt: d.ExpiresAt,
		CreatedAt: d.CreatedAt,
	}

	if entry.Expired(time.Now()) {
		// Best-effort cleanup of the stale document.
		_, _ = docRef.Delete(ctx)
		return nil, goerr.Wrap(ErrCacheMiss, "cache entry expired", goerr.V("key", key))
	}

	return entry, nil
}

func (r *cacheRepository) Set(ctx context.Context, entry *model.CacheEntry) error {
	doc := &cacheDoc{
		Key:       entry.Key,
		Value:     entry.Value,
		ExpiresAt: entry.ExpiresAt,
		CreatedAt: entry.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection().Doc(entry.Key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to set cache entry", goerr.V("key", entry.Key))
	}

	return nil
}
