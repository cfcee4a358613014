package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

type conversationRepository struct {
	mu            sync.RWMutex
	conversations map[types.ConversationID]*model.Conversation
	messages      map[types.ConversationID][]*model.Message
}

func newConversationRepository() *conversationRepository {
	return &conversationRepository{
		conversations: make(map[types.ConversationID]*model.Conversation),
		messages:      make(map[types.ConversationID][]*model.Message),
	}
}

func copyMessage(m *model.Message) *model.Message {
	copied := *m
	return &copied
}

func (r *conversationRepository) GetOrCreate(ctx context.Context, id types.ConversationID) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id == "" {
		id = types.NewConversationID()
	}

	if conv, exists := r.conversations[id]; exists {
		copied := *conv
		return &copied, nil
	}

	conv := &model.Conversation{
		ID:        id,
		CreatedAt: time.Now().UTC(),
	}
	r.conversations[id] = conv

	copied := *conv
	return &copied, nil
}

func (r *conversationRepository) AppendExchange(ctx context.Context, id types.ConversationID, question, answer string) error {
	if id == "" {
		return goerr.New("conversation ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	if _, exists := r.conversations[id]; !exists {
		r.conversations[id] = &model.Conversation{ID: id, CreatedAt: now}
	}

	// The assistant message is timestamped strictly after the user message
	// so that chronological ordering preserves the pairing.
	userMsg := &model.Message{
		ID:             types.NewMessageID(),
		ConversationID: id,
		Role:           types.RoleUser,
		Content:        question,
		CreatedAt:      now,
	}
	assistantMsg := &model.Message{
		ID:             types.NewMessageID(),
		ConversationID: id,
		Role:           types.RoleAssistant,
		Content:        answer,
		CreatedAt:      now.Add(time.Microsecond),
	}

	r.messages[id] = append(r.messages[id], userMsg, assistantMsg)
	return nil
}

func (r *conversationRepository) History(ctx context.Context, id types.ConversationID, limit int) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.messages[id]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	result := make([]*model.Message, 0, len(msgs))
	for _, m := range msgs {
		result = append(result, copyMessage(m))
	}

	return result, nil
}
