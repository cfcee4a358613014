package usecase

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

//go:embed prompt/chat_system.md
var chatSystemPrompt string

// systemPrompt renders the persona into the system instruction.
func (uc *UseCases) systemPrompt() string {
	return fmt.Sprintf(chatSystemPrompt, uc.persona.AssistantName, uc.persona.SubjectName)
}

// buildContext formats retrieved records for the prompt. Each record is
// numbered and annotated with its source and similarity so the model can
// weigh and cite them.
func buildContext(records []*model.ScoredRecord) string {
	if len(records) == 0 {
		return "No relevant context was found in the knowledge base."
	}

	parts := make([]string, 0, len(records))
	for i, r := range records {
		source := r.Record.Source
		if source == "" {
			source = "unknown"
		}
		parts = append(parts, fmt.Sprintf("[Document %d - Source: %s - Similarity: %.2f]\n%s\n",
			i+1, source, r.Similarity, r.Record.Content))
	}

	return strings.Join(parts, "\n---\n")
}

// buildHistory formats recent conversation messages for the prompt.
func buildHistory(messages []*model.Message) string {
	if len(messages) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\nConversation history:\n")
	for _, msg := range messages {
		switch msg.Role {
		case types.RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}

	return b.String()
}

// buildPrompt assembles the full generation prompt.
func (uc *UseCases) buildPrompt(question string, records []*model.ScoredRecord, messages []*model.Message) string {
	return fmt.Sprintf(`%s
%s
AVAILABLE CONTEXT:
%s

USER QUESTION:
%s

ANSWER:`, uc.systemPrompt(), buildHistory(messages), buildContext(records), question)
}
