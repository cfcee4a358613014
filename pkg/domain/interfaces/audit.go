package interfaces

import (
	"context"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
)

// AuditRepository persists audit log entries
type AuditRepository interface {
	Put(ctx context.Context, entry *model.AuditEntry) error
}
