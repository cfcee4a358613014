package memory

import (
	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
)

// Sentinel errors shared by the in-memory repositories
var (
	ErrNotFound        = goerr.New("not found")
	ErrVersionConflict = goerr.New("version conflict")
	ErrCacheMiss       = goerr.New("cache miss")
)

// Memory is the in-memory repository backend, used for development and
// tests. All sub-repositories are safe for concurrent use.
type Memory struct {
	record       *recordRepository
	conversation *conversationRepository
	breaker      *breakerRepository
	cache        *cacheRepository
	audit        *auditRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		record:       newRecordRepository(),
		conversation: newConversationRepository(),
		breaker:      newBreakerRepository(),
		cache:        newCacheRepository(),
		audit:        newAuditRepository(),
	}
}

func (m *Memory) Record() interfaces.RecordRepository {
	return m.record
}

func (m *Memory) Conversation() interfaces.ConversationRepository {
	return m.conversation
}

func (m *Memory) Breaker() interfaces.BreakerRepository {
	return m.breaker
}

func (m *Memory) Cache() interfaces.CacheRepository {
	return m.cache
}

func (m *Memory) Audit() interfaces.AuditRepository {
	return m.audit
}

func (m *Memory) Close() error {
	return nil
}
