package interfaces

import (
	"context"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// BreakerRepository stores per-provider circuit breaker state shared
// across concurrent workers and process instances.
type BreakerRepository interface {
	// Get returns the breaker record for the provider. A provider with no
	// stored record yields a zero-value CLOSED breaker.
	Get(ctx context.Context, providerID types.ProviderID) (*model.Breaker, error)

	// Update conditionally writes the breaker record: the write succeeds
	// only if the stored version still matches breaker.Version, and the
	// stored version is then incremented. A mismatch returns
	// ErrVersionConflict from the backend package.
	Update(ctx context.Context, breaker *model.Breaker) error
}
