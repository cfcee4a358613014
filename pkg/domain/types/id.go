package types

import "github.com/google/uuid"

// ConversationID identifies a conversation. Caller-supplied or generated
// on the first message.
type ConversationID string

// NewConversationID generates a new time-ordered ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the conversation ID
func (id ConversationID) String() string {
	return string(id)
}

// MessageID identifies a single message within a conversation
type MessageID string

// NewMessageID generates a new time-ordered MessageID
func NewMessageID() MessageID {
	return MessageID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the message ID
func (id MessageID) String() string {
	return string(id)
}

// RecordID identifies a stored embedding record
type RecordID string

// NewRecordID generates a new RecordID
func NewRecordID() RecordID {
	return RecordID(uuid.New().String())
}

// String returns the string representation of the record ID
func (id RecordID) String() string {
	return string(id)
}

// ProviderID identifies a text generation provider (e.g. "gemini", "claude")
type ProviderID string

// String returns the string representation of the provider ID
func (id ProviderID) String() string {
	return string(id)
}

// AuditID identifies an audit log entry
type AuditID string

// NewAuditID generates a new time-ordered AuditID
func NewAuditID() AuditID {
	return AuditID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the audit ID
func (id AuditID) String() string {
	return string(id)
}
