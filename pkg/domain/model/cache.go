package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// CacheEntry is a cached answer keyed by the request-defining inputs.
// Entries are inert once expired and must never be returned.
type CacheEntry struct {
	Key       string
	Value     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the entry is past its TTL at the given time
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// CacheKey derives a deterministic cache key from the question and the
// retrieval parameters. The conversation ID is intentionally excluded so
// that identical questions hit the cache across conversations.
func CacheKey(question string, limit int, threshold float64) string {
	h := sha256.New()
	fmt.Fprintf(h, "chat:%s:%d:%.4f", question, limit, threshold)
	return hex.EncodeToString(h.Sum(nil))
}
