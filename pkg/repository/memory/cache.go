package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
)

type cacheRepository struct {
	mu      sync.RWMutex
	entries map[string]*model.CacheEntry
}

func newCacheRepository() *cacheRepository {
	return &cacheRepository{
		entries: make(map[string]*model.CacheEntry),
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	r.mu.RLock()
	entry, exists := r.entries[key]
	r.mu.RUnlock()

	if !exists {
		return nil, goerr.Wrap(ErrCacheMiss, "no entry", goerr.V("key", key))
	}
	if entry.Expired(time.Now()) {
		// Expired entries are inert; drop lazily
		r.mu.Lock()
		delete(r.entries, key)
		r.mu.Unlock()
		return nil, goerr.Wrap(ErrCacheMiss, "entry expired", goerr.V("key", key))
	}

	copied := *entry
	return &copied, nil
}

func (r *cacheRepository) Set(ctx context.Context, entry *model.CacheEntry) error {
	if entry.Key == "" {
		return goerr.New("cache key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *entry
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}
	r.entries[entry.Key] = &copied
	return nil
}
