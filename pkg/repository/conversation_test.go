package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
	"github.com/halcyon-lab/minerva/pkg/repository/memory"
)

func runConversationRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("GetOrCreate with empty ID generates a new conversation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conv, err := repo.Conversation().GetOrCreate(ctx, "")
		gt.NoError(t, err).Required()

		gt.String(t, conv.ID.String()).NotEqual("")
		gt.Bool(t, conv.CreatedAt.IsZero()).False()
	})

	t.Run("GetOrCreate returns existing conversation", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Conversation().GetOrCreate(ctx, "")
		gt.NoError(t, err).Required()

		retrieved, err := repo.Conversation().GetOrCreate(ctx, created.ID)
		gt.NoError(t, err).Required()

		gt.Value(t, retrieved.ID).Equal(created.ID)
		gt.Value(t, retrieved.CreatedAt.Unix()).Equal(created.CreatedAt.Unix())
	})

	t.Run("AppendExchange stores a user and assistant pair in order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conv, err := repo.Conversation().GetOrCreate(ctx, "")
		gt.NoError(t, err).Required()

		err = repo.Conversation().AppendExchange(ctx, conv.ID, "What is the deadline?", "March 15.")
		gt.NoError(t, err).Required()

		messages, err := repo.Conversation().History(ctx, conv.ID, 10)
		gt.NoError(t, err).Required()

		gt.Array(t, messages).Length(2)
		gt.Value(t, messages[0].Role).Equal(types.RoleUser)
		gt.Value(t, messages[0].Content).Equal("What is the deadline?")
		gt.Value(t, messages[1].Role).Equal(types.RoleAssistant)
		gt.Value(t, messages[1].Content).Equal("March 15.")
		gt.Bool(t, messages[1].CreatedAt.After(messages[0].CreatedAt)).True()
		gt.Value(t, messages[0].ConversationID).Equal(conv.ID)
	})

	t.Run("History returns the most recent messages chronologically", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conv, err := repo.Conversation().GetOrCreate(ctx, "")
		gt.NoError(t, err).Required()

		for i := 0; i < 3; i++ {
			err := repo.Conversation().AppendExchange(ctx, conv.ID,
				fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
			gt.NoError(t, err).Required()
			time.Sleep(10 * time.Millisecond)
		}

		messages, err := repo.Conversation().History(ctx, conv.ID, 4)
		gt.NoError(t, err).Required()

		gt.Array(t, messages).Length(4)
		gt.Value(t, messages[0].Content).Equal("question 1")
		gt.Value(t, messages[1].Content).Equal("answer 1")
		gt.Value(t, messages[2].Content).Equal("question 2")
		gt.Value(t, messages[3].Content).Equal("answer 2")
	})

	t.Run("History returns empty for a conversation with no messages", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conv, err := repo.Conversation().GetOrCreate(ctx, "")
		gt.NoError(t, err).Required()

		messages, err := repo.Conversation().History(ctx, conv.ID, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, messages).Length(0)
	})

	t.Run("Exchanges in different conversations do not mix", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		conv1, err := repo.Conversation().GetOrCreate(ctx, "")
		gt.NoError(t, err).Required()
		conv2, err := repo.Conversation().GetOrCreate(ctx, "")
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Conversation().AppendExchange(ctx, conv1.ID, "first question", "first answer")).Required()
		gt.NoError(t, repo.Conversation().AppendExchange(ctx, conv2.ID, "second question", "second answer")).Required()

		messages, err := repo.Conversation().History(ctx, conv1.ID, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, messages).Length(2)
		gt.Value(t, messages[0].Content).Equal("first question")
	})
}

func TestMemoryConversationRepository(t *testing.T) {
	runConversationRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreConversationRepository(t *testing.T) {
	runConversationRepositoryTest(t, newFirestoreRepository)
}
