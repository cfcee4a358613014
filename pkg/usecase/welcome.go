package usecase

import (
	"context"
	"fmt"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
	"github.com/halcyon-lab/minerva/pkg/utils/logging"
)

// WelcomeResult is a generated greeting for a new or returning visitor.
type WelcomeResult struct {
	Message        string
	ConversationID types.ConversationID
}

// Welcome generates a greeting tailored to whether the conversation
// already has history. Like chat, it rides the provider chain and never
// fails outright.
func (uc *UseCases) Welcome(ctx context.Context, conversationID string) (*WelcomeResult, error) {
	conv := uc.resolveConversation(ctx, conversationID)

	history, err := uc.repo.Conversation().History(ctx, conv.ID, uc.historyLimit)
	if err != nil {
		logging.From(ctx).Warn("history read failed, treating visitor as new",
			"conversation_id", conv.ID, "error", err)
		history = nil
	}

	var prompt string
	if len(history) > 0 {
		prompt = fmt.Sprintf(`You are %s, the assistant for %s.
The user has returned to a previous conversation.
Generate a brief, warm greeting welcoming them back and inviting them to continue.
Two sentences at most.`, uc.persona.AssistantName, uc.persona.SubjectName)
	} else {
		prompt = fmt.Sprintf(`You are %s, the assistant for %s.
A new user just opened the chat.
Generate a brief, professional and friendly greeting.
Introduce yourself and mention that you can answer questions about %s.
Two sentences at most.`, uc.persona.AssistantName, uc.persona.SubjectName, uc.persona.SubjectName)
	}

	result := uc.router.Generate(ctx, prompt)

	uc.sink.CountChat(ctx, result.Provider, result.Fallback, false)

	return &WelcomeResult{
		Message:        result.Answer,
		ConversationID: conv.ID,
	}, nil
}

// History returns the recent messages of a conversation in
// chronological order.
func (uc *UseCases) History(ctx context.Context, conversationID string, limit int) ([]*model.Message, error) {
	if limit <= 0 {
		limit = uc.historyLimit
	}
	return uc.repo.Conversation().History(ctx, types.ConversationID(conversationID), limit)
}
