package router

import (
	"context"
	"errors"
	"time"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
	"github.com/halcyon-lab/minerva/pkg/repository/firestore"
	"github.com/halcyon-lab/minerva/pkg/repository/memory"
	"github.com/halcyon-lab/minerva/pkg/service/metrics"
	"github.com/halcyon-lab/minerva/pkg/utils/logging"
)

// casMaxAttempts bounds the optimistic retry loop on breaker writes.
// After that the update is abandoned: availability wins over perfect
// fault tracking.
const casMaxAttempts = 3

func isVersionConflict(err error) bool {
	return errors.Is(err, memory.ErrVersionConflict) || errors.Is(err, firestore.ErrVersionConflict)
}

// gate mediates all breaker reads and writes for the router.
type gate struct {
	repo      interfaces.BreakerRepository
	threshold int
	cooldown  time.Duration
	sink      metrics.Sink
}

// allow reports whether a call against the provider is currently
// permitted. An OPEN breaker whose cooldown has elapsed is moved to
// HALF_OPEN before the recovery probe. Breaker storage failures default
// to allowing the call.
func (g *gate) allow(ctx context.Context, providerID types.ProviderID) bool {
	breaker, err := g.repo.Get(ctx, providerID)
	if err != nil {
		logging.From(ctx).Warn("breaker read failed, treating provider as available",
			"provider", providerID, "error", err)
		return true
	}

	now := time.Now().UTC()
	allowed, trial := breaker.Allows(g.cooldown, now)
	if !allowed {
		return false
	}

	if trial && breaker.State.Normalize() == types.BreakerOpen {
		g.write(ctx, providerID, func(b *model.Breaker) *model.Breaker {
			if !b.CooldownElapsed(g.cooldown, now) && b.State.Normalize() != types.BreakerHalfOpen {
				return nil
			}
			return b.BeginTrial(now)
		})
	}

	return true
}

// success records a successful provider call.
func (g *gate) success(ctx context.Context, providerID types.ProviderID) {
	g.write(ctx, providerID, func(b *model.Breaker) *model.Breaker {
		return b.RecordSuccess(time.Now().UTC())
	})
}

// failure records a failed or timed out provider call.
func (g *gate) failure(ctx context.Context, providerID types.ProviderID) {
	g.write(ctx, providerID, func(b *model.Breaker) *model.Breaker {
		return b.RecordFailure(g.threshold, time.Now().UTC())
	})
}

// write applies a transition to the stored breaker under optimistic
// concurrency. The transition is recomputed from a fresh read on every
// conflict; a nil transition result aborts the write. Exhausted retries
// and storage errors are logged and swallowed.
func (g *gate) write(ctx context.Context, providerID types.ProviderID, transition func(*model.Breaker) *model.Breaker) {
	for attempt := 0; attempt < casMaxAttempts; attempt++ {
		breaker, err := g.repo.Get(ctx, providerID)
		if err != nil {
			logging.From(ctx).Warn("breaker read failed, dropping state update",
				"provider", providerID, "error", err)
			return
		}

		next := transition(breaker)
		if next == nil {
			return
		}

		if err := g.repo.Update(ctx, next); err != nil {
			if isVersionConflict(err) {
				continue
			}
			logging.From(ctx).Warn("breaker write failed, dropping state update",
				"provider", providerID, "error", err)
			return
		}

		if next.State != breaker.State {
			g.sink.CountBreakerTransition(ctx, providerID, next.State)
			logging.From(ctx).Info("circuit breaker state changed",
				"provider", providerID,
				"from", breaker.State.String(),
				"to", next.State.String(),
				"failures", next.ConsecutiveFailures)
		}
		return
	}

	logging.From(ctx).Warn("breaker update abandoned after repeated conflicts",
		"provider", providerID, "attempts", casMaxAttempts)
}
