package model

import (
	"time"

	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// Conversation is an append-only message log identified by an opaque ID.
// It is created on first message and never deleted by this engine.
type Conversation struct {
	ID        types.ConversationID
	CreatedAt time.Time
}

// Message is a single entry in a conversation. Messages are append-only
// and always persisted in user/assistant pairs.
type Message struct {
	ID             types.MessageID
	ConversationID types.ConversationID
	Role           types.Role
	Content        string
	CreatedAt      time.Time
}
