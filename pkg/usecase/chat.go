package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
	"github.com/halcyon-lab/minerva/pkg/service/router"
	"github.com/halcyon-lab/minerva/pkg/utils/logging"
	"github.com/halcyon-lab/minerva/pkg/utils/sanitize"
)

// CacheProviderID marks answers served from the response cache.
const CacheProviderID = types.ProviderID("cache")

// ChatInput is one inbound chat request.
type ChatInput struct {
	ConversationID string
	Question       string
	MaxContext     int
}

// Chat answers a question with retrieval-augmented generation. Only
// input validation can fail it; every generation-path problem degrades
// internally and the caller always gets an answer and a conversation ID.
func (uc *UseCases) Chat(ctx context.Context, input ChatInput) (*model.ChatResult, error) {
	logger := logging.From(ctx)

	question, err := sanitize.Text(input.Question, sanitize.DefaultMaxLength)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid question")
	}

	conv := uc.resolveConversation(ctx, input.ConversationID)

	limit := input.MaxContext
	if limit <= 0 {
		limit = uc.contextLimit
	}

	cacheKey := model.CacheKey(question, limit, uc.threshold)
	if entry, err := uc.repo.Cache().Get(ctx, cacheKey); err == nil {
		logger.Info("serving cached answer", "conversation_id", conv.ID)
		uc.appendExchange(ctx, conv.ID, question, entry.Value)
		uc.sink.CountChat(ctx, CacheProviderID, false, true)
		return &model.ChatResult{
			Answer:         entry.Value,
			Sources:        []model.Source{},
			ConversationID: conv.ID,
			Provider:       CacheProviderID,
			Cached:         true,
		}, nil
	}

	// A degraded knowledge base must not block the answer: retrieval
	// failures collapse to an empty context.
	records, err := uc.vector.Search(ctx, question, limit, uc.threshold)
	if err != nil {
		logger.Warn("retrieval failed, answering without context", "error", err)
		records = nil
	}
	uc.sink.ObserveRetrieval(ctx, len(records))

	history, err := uc.repo.Conversation().History(ctx, conv.ID, uc.historyLimit)
	if err != nil {
		logger.Warn("history read failed, answering without history",
			"conversation_id", conv.ID, "error", err)
		history = nil
	}

	prompt := uc.buildPrompt(question, records, history)
	result := uc.router.Generate(ctx, prompt)

	if result.Provider != router.StaticProviderID {
		uc.storeCache(ctx, cacheKey, result.Answer)
	}

	uc.appendExchange(ctx, conv.ID, question, result.Answer)

	sources := make([]model.Source, 0, len(records))
	for _, r := range records {
		sources = append(sources, model.NewSource(r))
	}

	uc.sink.CountChat(ctx, result.Provider, result.Fallback, false)
	uc.recorder.Record(ctx, "chat", conv.ID.String(), map[string]string{
		"provider": result.Provider.String(),
		"fallback": strconv.FormatBool(result.Fallback),
		"sources":  strconv.Itoa(len(sources)),
	})

	return &model.ChatResult{
		Answer:         result.Answer,
		Sources:        sources,
		ConversationID: conv.ID,
		Provider:       result.Provider,
		FallbackUsed:   result.Fallback,
	}, nil
}

// resolveConversation loads or creates the conversation. Store failures
// degrade to an unpersisted local ID so the answer still carries a valid
// conversation reference.
func (uc *UseCases) resolveConversation(ctx context.Context, id string) *model.Conversation {
	conv, err := uc.repo.Conversation().GetOrCreate(ctx, types.ConversationID(id))
	if err != nil {
		logging.From(ctx).Warn("conversation resolution failed, using ephemeral ID", "error", err)
		convID := types.ConversationID(id)
		if convID == "" {
			convID = types.NewConversationID()
		}
		return &model.Conversation{ID: convID, CreatedAt: time.Now().UTC()}
	}
	return conv
}

// appendExchange persists the user/assistant pair best-effort.
func (uc *UseCases) appendExchange(ctx context.Context, id types.ConversationID, question, answer string) {
	if err := uc.repo.Conversation().AppendExchange(ctx, id, question, answer); err != nil {
		logging.From(ctx).Warn("failed to persist exchange",
			"conversation_id", id, "error", err)
	}
}

// storeCache writes the answer to the response cache best-effort.
func (uc *UseCases) storeCache(ctx context.Context, key, answer string) {
	now := time.Now().UTC()
	err := uc.repo.Cache().Set(ctx, &model.CacheEntry{
		Key:       key,
		Value:     answer,
		ExpiresAt: now.Add(uc.cacheTTL),
		CreatedAt: now,
	})
	if err != nil {
		logging.From(ctx).Warn("failed to cache answer", "error", err)
	}
}
