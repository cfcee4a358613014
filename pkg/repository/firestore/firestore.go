package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
)

// Sentinel errors shared by the Firestore repositories
var (
	ErrNotFound        = goerr.New("not found")
	ErrVersionConflict = goerr.New("version conflict")
	ErrCacheMiss       = goerr.New("cache miss")
)

// Firestore is the shared-store repository backend. Breaker state and
// cache entries live here so that fault tracking survives process
// restarts and is shared across instances.
type Firestore struct {
	client       *firestore.Client
	record       *recordRepository
	conversation *conversationRepository
	breaker      *breakerRepository
	cache        *cacheRepository
	audit        *auditRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.record.collectionPrefix = prefix
		f.conversation.collectionPrefix = prefix
		f.breaker.collectionPrefix = prefix
		f.cache.collectionPrefix = prefix
		f.audit.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID == "" {
		client, err = firestore.NewClient(ctx, projectID)
	} else {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:       client,
		record:       newRecordRepository(client),
		conversation: newConversationRepository(client),
		breaker:      newBreakerRepository(client),
		cache:        newCacheRepository(client),
		audit:        newAuditRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Record() interfaces.RecordRepository {
	return f.record
}

func (f *Firestore) Conversation() interfaces.ConversationRepository {
	return f.conversation
}

func (f *Firestore) Breaker() interfaces.BreakerRepository {
	return f.breaker
}

func (f *Firestore) Cache() interfaces.CacheRepository {
	return f.cache
}

func (f *Firestore) Audit() interfaces.AuditRepository {
	return f.audit
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
