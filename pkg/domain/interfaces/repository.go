package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Record() RecordRepository
	Conversation() ConversationRepository
	Breaker() BreakerRepository
	Cache() CacheRepository
	Audit() AuditRepository

	Close() error
}
