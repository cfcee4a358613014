package interfaces

import (
	"context"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// ConversationRepository is the append-only per-conversation message log.
type ConversationRepository interface {
	// GetOrCreate resolves the conversation for the given ID, creating it
	// if absent. An empty ID yields a newly generated conversation.
	GetOrCreate(ctx context.Context, id types.ConversationID) (*model.Conversation, error)

	// AppendExchange persists the user question and assistant answer as a
	// single atomic write: both messages become visible or neither does.
	AppendExchange(ctx context.Context, id types.ConversationID, question, answer string) error

	// History returns the most recent messages of the conversation in
	// chronological order, capped at limit.
	History(ctx context.Context, id types.ConversationID, limit int) ([]*model.Message, error)
}
