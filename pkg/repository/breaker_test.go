package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
	"github.com/halcyon-lab/minerva/pkg/repository/firestore"
	"github.com/halcyon-lab/minerva/pkg/repository/memory"
)

func runBreakerRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	const providerID = types.ProviderID("gemini")

	t.Run("Get returns zero-value CLOSED breaker for unknown provider", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		breaker, err := repo.Breaker().Get(ctx, providerID)
		gt.NoError(t, err).Required()

		gt.Value(t, breaker.ProviderID).Equal(providerID)
		gt.Value(t, breaker.State).Equal(types.BreakerClosed)
		gt.Value(t, breaker.ConsecutiveFailures).Equal(0)
		gt.Value(t, breaker.Version).Equal(int64(0))
	})

	t.Run("Update persists state and increments version", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		breaker, err := repo.Breaker().Get(ctx, providerID)
		gt.NoError(t, err).Required()

		next := breaker.RecordFailure(5, time.Now().UTC())
		gt.NoError(t, repo.Breaker().Update(ctx, next)).Required()

		stored, err := repo.Breaker().Get(ctx, providerID)
		gt.NoError(t, err).Required()

		gt.Value(t, stored.ConsecutiveFailures).Equal(1)
		gt.Value(t, stored.State).Equal(types.BreakerClosed)
		gt.Value(t, stored.Version).Equal(int64(1))
	})

	t.Run("Update with stale version returns conflict", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		base, err := repo.Breaker().Get(ctx, providerID)
		gt.NoError(t, err).Required()

		first := base.RecordFailure(5, time.Now().UTC())
		gt.NoError(t, repo.Breaker().Update(ctx, first)).Required()

		// Second writer still holds the original version.
		second := base.RecordFailure(5, time.Now().UTC())
		err = repo.Breaker().Update(ctx, second)
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, memory.ErrVersionConflict) || errors.Is(err, firestore.ErrVersionConflict)).True()

		// Only the first write landed.
		stored, err := repo.Breaker().Get(ctx, providerID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.ConsecutiveFailures).Equal(1)
		gt.Value(t, stored.Version).Equal(int64(1))
	})

	t.Run("Repeated failures trip the breaker to OPEN", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			breaker, err := repo.Breaker().Get(ctx, providerID)
			gt.NoError(t, err).Required()
			gt.NoError(t, repo.Breaker().Update(ctx, breaker.RecordFailure(5, time.Now().UTC()))).Required()
		}

		stored, err := repo.Breaker().Get(ctx, providerID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.State).Equal(types.BreakerOpen)
		gt.Value(t, stored.ConsecutiveFailures).Equal(5)
		gt.Bool(t, stored.OpenedAt.IsZero()).False()
	})

	t.Run("Success resets an OPEN breaker to CLOSED", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			breaker, err := repo.Breaker().Get(ctx, providerID)
			gt.NoError(t, err).Required()
			gt.NoError(t, repo.Breaker().Update(ctx, breaker.RecordFailure(5, time.Now().UTC()))).Required()
		}

		breaker, err := repo.Breaker().Get(ctx, providerID)
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Breaker().Update(ctx, breaker.RecordSuccess(time.Now().UTC()))).Required()

		stored, err := repo.Breaker().Get(ctx, providerID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.State).Equal(types.BreakerClosed)
		gt.Value(t, stored.ConsecutiveFailures).Equal(0)
		gt.Value(t, stored.Version).Equal(int64(6))
	})

	t.Run("Providers have independent breakers", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		breaker, err := repo.Breaker().Get(ctx, providerID)
		gt.NoError(t, err).Required()
		gt.NoError(t, repo.Breaker().Update(ctx, breaker.RecordFailure(5, time.Now().UTC()))).Required()

		other, err := repo.Breaker().Get(ctx, types.ProviderID("claude"))
		gt.NoError(t, err).Required()
		gt.Value(t, other.ConsecutiveFailures).Equal(0)
		gt.Value(t, other.Version).Equal(int64(0))
	})
}

func TestMemoryBreakerRepository(t *testing.T) {
	runBreakerRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreBreakerRepository(t *testing.T) {
	runBreakerRepositoryTest(t, newFirestoreRepository)
}
