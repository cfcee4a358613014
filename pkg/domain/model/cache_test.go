package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
)

func TestCacheKey(t *testing.T) {
	t.Run("deterministic for same inputs", func(t *testing.T) {
		gt.Value(t, model.CacheKey("what is minerva", 5, 0.7)).
			Equal(model.CacheKey("what is minerva", 5, 0.7))
	})

	t.Run("differs by question", func(t *testing.T) {
		gt.Value(t, model.CacheKey("a", 5, 0.7)).
			NotEqual(model.CacheKey("b", 5, 0.7))
	})

	t.Run("differs by retrieval parameters", func(t *testing.T) {
		gt.Value(t, model.CacheKey("a", 5, 0.7)).
			NotEqual(model.CacheKey("a", 3, 0.7))
		gt.Value(t, model.CacheKey("a", 5, 0.7)).
			NotEqual(model.CacheKey("a", 5, 0.8))
	})
}

func TestCacheEntryExpired(t *testing.T) {
	now := time.Now().UTC()
	entry := &model.CacheEntry{
		Key:       "k",
		Value:     "v",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}

	gt.False(t, entry.Expired(now))
	gt.False(t, entry.Expired(now.Add(time.Hour-time.Second)))
	gt.True(t, entry.Expired(now.Add(time.Hour)))
	gt.True(t, entry.Expired(now.Add(2*time.Hour)))
}
