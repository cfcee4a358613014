package model

import (
	"time"

	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// Breaker is the shared circuit breaker record for a single provider.
// It is mutated via optimistic concurrency: readers take the current
// Version, compute the transition with the pure helpers below, and write
// conditionally on the version still matching.
type Breaker struct {
	ProviderID          types.ProviderID
	State               types.BreakerState
	ConsecutiveFailures int
	OpenedAt            time.Time
	Version             int64
	UpdatedAt           time.Time
}

// NewBreaker returns the zero-value breaker for a provider: CLOSED with
// no recorded failures.
func NewBreaker(providerID types.ProviderID) *Breaker {
	return &Breaker{
		ProviderID: providerID,
		State:      types.BreakerClosed,
	}
}

// Clone returns a copy of the breaker record
func (b *Breaker) Clone() *Breaker {
	copied := *b
	return &copied
}

// CooldownElapsed reports whether an OPEN breaker has cooled down enough
// for a HALF_OPEN trial call.
func (b *Breaker) CooldownElapsed(cooldown time.Duration, now time.Time) bool {
	if b.State.Normalize() != types.BreakerOpen {
		return false
	}
	return now.Sub(b.OpenedAt) >= cooldown
}

// Allows reports whether a call may be attempted against the provider,
// and whether that call is a HALF_OPEN trial.
func (b *Breaker) Allows(cooldown time.Duration, now time.Time) (allowed, trial bool) {
	switch b.State.Normalize() {
	case types.BreakerOpen:
		if b.CooldownElapsed(cooldown, now) {
			return true, true
		}
		return false, false
	case types.BreakerHalfOpen:
		return true, true
	default:
		return true, false
	}
}

// BeginTrial marks an OPEN breaker HALF_OPEN for a recovery probe.
func (b *Breaker) BeginTrial(now time.Time) *Breaker {
	next := b.Clone()
	next.State = types.BreakerHalfOpen
	next.UpdatedAt = now
	return next
}

// RecordFailure returns the next breaker value after a failed call.
// CLOSED trips to OPEN when the failure count reaches threshold; a failed
// HALF_OPEN trial re-opens the breaker and restarts the cooldown.
func (b *Breaker) RecordFailure(threshold int, now time.Time) *Breaker {
	next := b.Clone()
	next.ConsecutiveFailures++
	next.UpdatedAt = now

	switch b.State.Normalize() {
	case types.BreakerHalfOpen, types.BreakerOpen:
		next.State = types.BreakerOpen
		next.OpenedAt = now
	default:
		if next.ConsecutiveFailures >= threshold {
			next.State = types.BreakerOpen
			next.OpenedAt = now
		} else {
			next.State = types.BreakerClosed
		}
	}
	return next
}

// RecordSuccess returns the next breaker value after a successful call:
// failures reset to zero and a HALF_OPEN (or recovering OPEN) breaker
// closes.
func (b *Breaker) RecordSuccess(now time.Time) *Breaker {
	next := b.Clone()
	next.State = types.BreakerClosed
	next.ConsecutiveFailures = 0
	next.OpenedAt = time.Time{}
	next.UpdatedAt = now
	return next
}
