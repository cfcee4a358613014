package interfaces

import (
	"context"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
)

// CacheRepository is a key-value store with TTL used to short-circuit
// repeat provider calls. Expired entries are never returned.
type CacheRepository interface {
	// Get returns the live entry for the key, or the backend package's
	// ErrCacheMiss when the key is absent or expired.
	Get(ctx context.Context, key string) (*model.CacheEntry, error)
	Set(ctx context.Context, entry *model.CacheEntry) error
}
