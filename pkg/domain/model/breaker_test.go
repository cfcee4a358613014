package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

func TestBreakerTransitions(t *testing.T) {
	now := time.Now().UTC()

	t.Run("new breaker starts closed", func(t *testing.T) {
		b := model.NewBreaker("gemini")
		gt.Value(t, b.State).Equal(types.BreakerClosed)
		gt.Value(t, b.ConsecutiveFailures).Equal(0)

		allowed, trial := b.Allows(time.Minute, now)
		gt.True(t, allowed)
		gt.False(t, trial)
	})

	t.Run("failures below threshold keep breaker closed", func(t *testing.T) {
		b := model.NewBreaker("gemini")
		for i := 0; i < 4; i++ {
			b = b.RecordFailure(5, now)
		}
		gt.Value(t, b.State).Equal(types.BreakerClosed)
		gt.Value(t, b.ConsecutiveFailures).Equal(4)
	})

	t.Run("reaching threshold opens breaker", func(t *testing.T) {
		b := model.NewBreaker("gemini")
		for i := 0; i < 5; i++ {
			b = b.RecordFailure(5, now)
		}
		gt.Value(t, b.State).Equal(types.BreakerOpen)
		gt.Value(t, b.OpenedAt).Equal(now)

		allowed, _ := b.Allows(time.Minute, now.Add(time.Second))
		gt.False(t, allowed)
	})

	t.Run("elapsed cooldown allows a trial call", func(t *testing.T) {
		b := model.NewBreaker("gemini")
		for i := 0; i < 5; i++ {
			b = b.RecordFailure(5, now)
		}

		allowed, trial := b.Allows(time.Minute, now.Add(time.Minute))
		gt.True(t, allowed)
		gt.True(t, trial)
	})

	t.Run("begin trial moves open breaker to half open", func(t *testing.T) {
		b := model.NewBreaker("gemini")
		for i := 0; i < 5; i++ {
			b = b.RecordFailure(5, now)
		}
		b = b.BeginTrial(now.Add(time.Minute))
		gt.Value(t, b.State).Equal(types.BreakerHalfOpen)

		allowed, trial := b.Allows(time.Minute, now.Add(time.Minute))
		gt.True(t, allowed)
		gt.True(t, trial)
	})

	t.Run("failed trial reopens and restarts cooldown", func(t *testing.T) {
		b := model.NewBreaker("gemini")
		for i := 0; i < 5; i++ {
			b = b.RecordFailure(5, now)
		}
		trialAt := now.Add(time.Minute)
		b = b.BeginTrial(trialAt).RecordFailure(5, trialAt)

		gt.Value(t, b.State).Equal(types.BreakerOpen)
		gt.Value(t, b.OpenedAt).Equal(trialAt)

		allowed, _ := b.Allows(time.Minute, trialAt.Add(time.Second))
		gt.False(t, allowed)
	})

	t.Run("success resets failures and closes", func(t *testing.T) {
		b := model.NewBreaker("gemini")
		for i := 0; i < 5; i++ {
			b = b.RecordFailure(5, now)
		}
		b = b.BeginTrial(now.Add(time.Minute)).RecordSuccess(now.Add(time.Minute))

		gt.Value(t, b.State).Equal(types.BreakerClosed)
		gt.Value(t, b.ConsecutiveFailures).Equal(0)
		gt.True(t, b.OpenedAt.IsZero())
	})

	t.Run("success mid-streak clears the count", func(t *testing.T) {
		b := model.NewBreaker("gemini")
		b = b.RecordFailure(5, now).RecordFailure(5, now).RecordSuccess(now)
		gt.Value(t, b.ConsecutiveFailures).Equal(0)
		gt.Value(t, b.State).Equal(types.BreakerClosed)
	})

	t.Run("transitions do not mutate the receiver", func(t *testing.T) {
		b := model.NewBreaker("gemini")
		_ = b.RecordFailure(1, now)
		gt.Value(t, b.State).Equal(types.BreakerClosed)
		gt.Value(t, b.ConsecutiveFailures).Equal(0)
	})
}

func TestBreakerStateNormalize(t *testing.T) {
	gt.Value(t, types.BreakerState("").Normalize()).Equal(types.BreakerClosed)
	gt.Value(t, types.BreakerOpen.Normalize()).Equal(types.BreakerOpen)
}
