package memory

import (
	"context"
	"sync"
	"time"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

type auditRepository struct {
	mu      sync.RWMutex
	entries []*model.AuditEntry
}

func newAuditRepository() *auditRepository {
	return &auditRepository{}
}

func (r *auditRepository) Put(ctx context.Context, entry *model.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *entry
	if copied.ID == "" {
		copied.ID = types.NewAuditID()
	}
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = time.Now().UTC()
	}

	r.entries = append(r.entries, &copied)
	return nil
}

// Entries returns a snapshot of all audit entries, oldest first.
// Only the in-memory backend exposes this; tests use it to assert on
// fire-and-forget writes.
func (r *auditRepository) Entries() []*model.AuditEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.AuditEntry, 0, len(r.entries))
	for _, e := range r.entries {
		copied := *e
		result = append(result, &copied)
	}
	return result
}

// AuditEntries returns the recorded audit entries from the backend root
func (m *Memory) AuditEntries() []*model.AuditEntry {
	return m.audit.Entries()
}
