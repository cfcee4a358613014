package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

type breakerRepository struct {
	mu       sync.Mutex
	breakers map[types.ProviderID]*model.Breaker
}

func newBreakerRepository() *breakerRepository {
	return &breakerRepository{
		breakers: make(map[types.ProviderID]*model.Breaker),
	}
}

func (r *breakerRepository) Get(ctx context.Context, providerID types.ProviderID) (*model.Breaker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, exists := r.breakers[providerID]; exists {
		return b.Clone(), nil
	}

	return model.NewBreaker(providerID), nil
}

func (r *breakerRepository) Update(ctx context.Context, breaker *model.Breaker) error {
	if breaker.ProviderID == "" {
		return goerr.New("provider ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var storedVersion int64
	if stored, exists := r.breakers[breaker.ProviderID]; exists {
		storedVersion = stored.Version
	}

	if storedVersion != breaker.Version {
		return goerr.Wrap(ErrVersionConflict, "breaker was updated concurrently",
			goerr.V("provider", breaker.ProviderID),
			goerr.V("expected", breaker.Version),
			goerr.V("stored", storedVersion))
	}

	next := breaker.Clone()
	next.Version++
	r.breakers[breaker.ProviderID] = next
	return nil
}
