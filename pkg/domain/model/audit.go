package model

import (
	"time"

	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// AuditEntry records a pipeline action for operational review.
// Audit writes are fire-and-forget: a failed write never affects the
// chat or ingest result.
type AuditEntry struct {
	ID        types.AuditID
	Action    string
	Subject   string
	Actor     string
	Details   map[string]string
	CreatedAt time.Time
}
