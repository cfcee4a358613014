package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

const auditsCollection = "audits"

type auditDoc struct {
	ID        types.AuditID     `firestore:"ID"`
	Action    string            `firestore:"Action"`
	Subject   string            `firestore:"Subject"`
	Actor     string            `firestore:"Actor"`
	Details   map[string]string `firestore:"Details,omitempty"`
	CreatedAt time.Time         `firestore:"CreatedAt"`
}

type auditRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newAuditRepository(client *firestore.Client) *auditRepository {
	return &auditRepository{client: client}
}

func (r *auditRepository) collection() *firestore.CollectionRef {
	name := auditsCollection
	if r.collectionPrefix != "" {
		name = r.collectionPrefix + "_" + name
	}
	return r.client.Collection(name)
}

func (r *auditRepository) Put(ctx context.Context, entry *model.AuditEntry) error {
	doc := &auditDoc{
		ID:        entry.ID,
		Action:    entry.Action,
		Subject:   entry.Subject,
		Actor:     entry.Actor,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt,
	}
	if doc.ID == "" {
		doc.ID = types.NewAuditID()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection().Doc(doc.ID.String()).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put audit entry", goerr.V("auditID", doc.ID))
	}

	return nil
}
