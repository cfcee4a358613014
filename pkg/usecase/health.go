package usecase

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// ProviderStatus is a point-in-time view of one provider's breaker.
type ProviderStatus struct {
	Provider            types.ProviderID   `json:"provider"`
	State               types.BreakerState `json:"state"`
	ConsecutiveFailures int                `json:"consecutive_failures"`
	UpdatedAt           time.Time          `json:"updated_at,omitzero"`
}

// ProviderHealth snapshots the breaker state of every configured
// provider. Snapshots are fetched concurrently since each is an
// independent read.
func (uc *UseCases) ProviderHealth(ctx context.Context) ([]*ProviderStatus, error) {
	providers := uc.router.Providers()
	statuses := make([]*ProviderStatus, len(providers))

	var mu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)

	for i, providerID := range providers {
		eg.Go(func() error {
			breaker, err := uc.repo.Breaker().Get(ctx, providerID)
			if err != nil {
				return err
			}

			mu.Lock()
			statuses[i] = &ProviderStatus{
				Provider:            providerID,
				State:               breaker.State.Normalize(),
				ConsecutiveFailures: breaker.ConsecutiveFailures,
				UpdatedAt:           breaker.UpdatedAt,
			}
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return statuses, nil
}
