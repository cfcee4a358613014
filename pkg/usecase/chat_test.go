package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
	"github.com/halcyon-lab/minerva/pkg/repository/memory"
	"github.com/halcyon-lab/minerva/pkg/service/router"
	"github.com/halcyon-lab/minerva/pkg/service/vector"
	"github.com/halcyon-lab/minerva/pkg/usecase"
)

// fixedEmbedder maps every text to the same vector so all content is
// mutually similar.
type fixedEmbedder struct {
	vec []float32
	err error
}

func (e *fixedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.vec, nil
}

func (e *fixedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, 0, len(texts))
	for range texts {
		vec, err := e.Embed(ctx, "")
		if err != nil {
			return nil, err
		}
		results = append(results, vec)
	}
	return results, nil
}

type stubProvider struct {
	id         types.ProviderID
	generateFn func(ctx context.Context, prompt string) (string, error)
	prompts    []string
}

func (p *stubProvider) ID() types.ProviderID {
	return p.id
}

func (p *stubProvider) Generate(ctx context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	if p.generateFn != nil {
		return p.generateFn(ctx, prompt)
	}
	return "generated answer", nil
}

type testEnv struct {
	repo     *memory.Memory
	provider *stubProvider
	uc       *usecase.UseCases
}

func newTestEnv(t *testing.T, opts ...usecase.Option) *testEnv {
	t.Helper()

	repo := memory.New()
	provider := &stubProvider{id: "gemini"}
	vectorSvc := vector.New(repo.Record(), &fixedEmbedder{vec: []float32{1, 0, 0}})
	routerSvc := router.New(repo.Breaker(), []interfaces.GenerationProvider{provider})

	return &testEnv{
		repo:     repo,
		provider: provider,
		uc:       usecase.New(repo, vectorSvc, routerSvc, opts...),
	}
}

func TestChat(t *testing.T) {
	t.Run("answers with sources and a conversation ID", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		_, err := env.repo.Record().Create(ctx, &model.Record{
			Content:   "The project uses Go and Firestore.",
			Embedding: []float32{1, 0, 0},
			Source:    "handbook",
		})
		gt.NoError(t, err).Required()

		result, err := env.uc.Chat(ctx, usecase.ChatInput{Question: "What stack does the project use?"})
		gt.NoError(t, err).Required()

		gt.Value(t, result.Answer).Equal("generated answer")
		gt.String(t, result.ConversationID.String()).NotEqual("")
		gt.Value(t, result.Provider).Equal(types.ProviderID("gemini"))
		gt.Bool(t, result.FallbackUsed).False()
		gt.Array(t, result.Sources).Length(1)
		gt.Value(t, result.Sources[0].Snippet).Equal("The project uses Go and Firestore.")
	})

	t.Run("retrieved context appears in the prompt", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		_, err := env.repo.Record().Create(ctx, &model.Record{
			Content:   "Deadline is March 15.",
			Embedding: []float32{1, 0, 0},
		})
		gt.NoError(t, err).Required()

		_, err = env.uc.Chat(ctx, usecase.ChatInput{Question: "When is the deadline?"})
		gt.NoError(t, err).Required()

		gt.Array(t, env.provider.prompts).Length(1)
		gt.String(t, env.provider.prompts[0]).Contains("Deadline is March 15.")
		gt.String(t, env.provider.prompts[0]).Contains("When is the deadline?")
	})

	t.Run("two exchanges persist four messages in order", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		first, err := env.uc.Chat(ctx, usecase.ChatInput{Question: "first question"})
		gt.NoError(t, err).Required()

		_, err = env.uc.Chat(ctx, usecase.ChatInput{
			ConversationID: first.ConversationID.String(),
			Question:       "second question",
		})
		gt.NoError(t, err).Required()

		messages, err := env.repo.Conversation().History(ctx, first.ConversationID, 10)
		gt.NoError(t, err).Required()

		gt.Array(t, messages).Length(4)
		gt.Value(t, messages[0].Role).Equal(types.RoleUser)
		gt.Value(t, messages[0].Content).Equal("first question")
		gt.Value(t, messages[1].Role).Equal(types.RoleAssistant)
		gt.Value(t, messages[2].Content).Equal("second question")
		gt.Value(t, messages[3].Role).Equal(types.RoleAssistant)
	})

	t.Run("all providers failing still yields an answer", func(t *testing.T) {
		env := newTestEnv(t)
		env.provider.generateFn = func(ctx context.Context, prompt string) (string, error) {
			return "", goerr.New("provider down")
		}

		result, err := env.uc.Chat(context.Background(), usecase.ChatInput{Question: "anything"})
		gt.NoError(t, err).Required()

		gt.String(t, result.Answer).NotEqual("")
		gt.Value(t, result.Provider).Equal(router.StaticProviderID)
		gt.Bool(t, result.FallbackUsed).True()
		gt.String(t, result.ConversationID.String()).NotEqual("")
	})

	t.Run("empty question is rejected before the pipeline", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Chat(context.Background(), usecase.ChatInput{Question: "   "})
		gt.Value(t, err).NotNil()
		gt.Array(t, env.provider.prompts).Length(0)
	})

	t.Run("repeat question is served from cache and still persisted", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		first, err := env.uc.Chat(ctx, usecase.ChatInput{Question: "repeat me"})
		gt.NoError(t, err).Required()
		gt.Bool(t, first.Cached).False()

		second, err := env.uc.Chat(ctx, usecase.ChatInput{
			ConversationID: first.ConversationID.String(),
			Question:       "repeat me",
		})
		gt.NoError(t, err).Required()

		gt.Bool(t, second.Cached).True()
		gt.Value(t, second.Provider).Equal(usecase.CacheProviderID)
		gt.Value(t, second.Answer).Equal(first.Answer)
		// Only the first request reached the provider.
		gt.Array(t, env.provider.prompts).Length(1)

		// The cached exchange is still appended to the conversation.
		messages, err := env.repo.Conversation().History(ctx, first.ConversationID, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, messages).Length(4)
	})

	t.Run("static fallback answers are not cached", func(t *testing.T) {
		env := newTestEnv(t)
		env.provider.generateFn = func(ctx context.Context, prompt string) (string, error) {
			return "", goerr.New("provider down")
		}
		ctx := context.Background()

		_, err := env.uc.Chat(ctx, usecase.ChatInput{Question: "broken"})
		gt.NoError(t, err).Required()

		// Provider recovers: the next identical question must reach it
		// instead of replaying the fallback from cache.
		env.provider.generateFn = nil
		result, err := env.uc.Chat(ctx, usecase.ChatInput{Question: "broken"})
		gt.NoError(t, err).Required()
		gt.Bool(t, result.Cached).False()
		gt.Value(t, result.Answer).Equal("generated answer")
	})

	t.Run("embedding failure degrades to answering without context", func(t *testing.T) {
		repo := memory.New()
		provider := &stubProvider{id: "gemini"}
		vectorSvc := vector.New(repo.Record(), &fixedEmbedder{err: goerr.New("embedder down")})
		routerSvc := router.New(repo.Breaker(), []interfaces.GenerationProvider{provider})
		uc := usecase.New(repo, vectorSvc, routerSvc)

		result, err := uc.Chat(context.Background(), usecase.ChatInput{Question: "anything"})
		gt.NoError(t, err).Required()

		gt.Value(t, result.Answer).Equal("generated answer")
		gt.Array(t, result.Sources).Length(0)
		gt.String(t, provider.prompts[0]).Contains("No relevant context was found")
	})
}

func TestIngest(t *testing.T) {
	t.Run("stores content and audits the write", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		record, err := env.uc.Ingest(ctx, usecase.IngestInput{
			Content: "New fact about the project",
			Source:  "api",
		})
		gt.NoError(t, err).Required()

		stored, err := env.repo.Record().Get(ctx, record.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Content).Equal("New fact about the project")
		gt.Array(t, stored.Embedding).Length(3)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.uc.Ingest(context.Background(), usecase.IngestInput{Content: ""})
		gt.Value(t, err).NotNil()
	})

	t.Run("url metadata is validated", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		_, err := env.uc.Ingest(ctx, usecase.IngestInput{
			Content:  "scraped page",
			Metadata: map[string]string{"url": "ftp://example.com/doc"},
		})
		gt.Value(t, err).NotNil()

		record, err := env.uc.Ingest(ctx, usecase.IngestInput{
			Content:  "scraped page",
			Metadata: map[string]string{"url": "https://example.com/doc"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, record.Metadata["url"]).Equal("https://example.com/doc")
	})

	t.Run("embedding failure surfaces to the caller", func(t *testing.T) {
		repo := memory.New()
		vectorSvc := vector.New(repo.Record(), &fixedEmbedder{err: goerr.New("embedder down")})
		routerSvc := router.New(repo.Breaker(), nil)
		uc := usecase.New(repo, vectorSvc, routerSvc)

		_, err := uc.Ingest(context.Background(), usecase.IngestInput{Content: "some content"})
		gt.Value(t, err).NotNil()
	})
}

func TestWelcome(t *testing.T) {
	t.Run("greets a new visitor", func(t *testing.T) {
		env := newTestEnv(t)

		result, err := env.uc.Welcome(context.Background(), "")
		gt.NoError(t, err).Required()

		gt.Value(t, result.Message).Equal("generated answer")
		gt.String(t, result.ConversationID.String()).NotEqual("")
		gt.String(t, env.provider.prompts[0]).Contains("new user")
	})

	t.Run("welcomes back a returning visitor", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		first, err := env.uc.Chat(ctx, usecase.ChatInput{Question: "hello"})
		gt.NoError(t, err).Required()

		_, err = env.uc.Welcome(ctx, first.ConversationID.String())
		gt.NoError(t, err).Required()

		last := env.provider.prompts[len(env.provider.prompts)-1]
		gt.String(t, last).Contains("returned to a previous conversation")
	})
}

func TestProviderHealth(t *testing.T) {
	t.Run("reports breaker state per provider", func(t *testing.T) {
		env := newTestEnv(t)
		env.provider.generateFn = func(ctx context.Context, prompt string) (string, error) {
			return "", goerr.New("provider down")
		}
		ctx := context.Background()

		_, err := env.uc.Chat(ctx, usecase.ChatInput{Question: "anything"})
		gt.NoError(t, err).Required()

		statuses, err := env.uc.ProviderHealth(ctx)
		gt.NoError(t, err).Required()

		gt.Array(t, statuses).Length(1)
		gt.Value(t, statuses[0].Provider).Equal(types.ProviderID("gemini"))
		gt.Value(t, statuses[0].State).Equal(types.BreakerClosed)
		gt.Value(t, statuses[0].ConsecutiveFailures).Equal(1)
	})
}
