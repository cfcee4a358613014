package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

const (
	conversationsCollection = "conversations"
	messagesCollection      = "messages"
)

type conversationDoc struct {
	ID        types.ConversationID `firestore:"ID"`
	CreatedAt time.Time            `firestore:"CreatedAt"`
}

type messageDoc struct {
	ID             types.MessageID      `firestore:"ID"`
	ConversationID types.ConversationID `firestore:"ConversationID"`
	Role           types.Role           `firestore:"Role"`
	Content        string               `firestore:"Content"`
	CreatedAt      time.Time            `firestore:"CreatedAt"`
}

func fromMessageDoc(d *messageDoc) *model.Message {
	return &model.Message{
		ID:             d.ID,
		ConversationID: d.ConversationID,
		Role:           d.Role,
		Content:        d.Content,
		CreatedAt:      d.CreatedAt,
	}
}

type conversationRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newConversationRepository(client *firestore.Client) *conversationRepository {
	return &conversationRepository{client: client}
}

func (r *conversationRepository) collection() *firestore.CollectionRef {
	name := conversationsCollection
	if r.collectionPrefix != "" {
		name = r.collectionPrefix + "_" + name
	}
	return r.client.Collection(name)
}

// messagesOf returns the per-conversation message subcollection:
// conversations/{conversationID}/messages
func (r *conversationRepository) messagesOf(id types.ConversationID) *firestore.CollectionRef {
	return r.collection().Doc(id.String()).Collection(messagesCollection)
}

func (r *conversationRepository) GetOrCreate(ctx context.Context, id types.ConversationID) (*model.Conversation, error) {
	if id == "" {
		id = types.NewConversationID()
	}

	docRef := r.collection().Doc(id.String())
	conv := &model.Conversation{ID: id}

	if err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get conversation")
			}
			conv.CreatedAt = time.Now().UTC()
			return tx.Set(docRef, &conversationDoc{
				ID:        id,
				CreatedAt: conv.CreatedAt,
			})
		}

		var d conversationDoc
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal conversation")
		}
		conv.CreatedAt = d.CreatedAt
		return nil
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to get or create conversation", goerr.V("conversationID", id))
	}

	return conv, nil
}

// AppendExchange writes the question and answer messages in a single
// transaction so that a conversation never ends on an unanswered user
// message. The assistant message is timestamped strictly after the user
// message so that chronological reads preserve the pairing.
func (r *conversationRepository) AppendExchange(ctx context.Context, id types.ConversationID, question, answer string) error {
	convRef := r.collection().Doc(id.String())
	messages := r.messagesOf(id)
	now := time.Now().UTC()

	userMsg := &messageDoc{
		ID:             types.NewMessageID(),
		ConversationID: id,
		Role:           types.RoleUser,
		Content:        question,
		CreatedAt:      now,
	}
	assistantMsg := &messageDoc{
		ID:             types.NewMessageID(),
		ConversationID: id,
		Role:           types.RoleAssistant,
		Content:        answer,
		CreatedAt:      now.Add(time.Microsecond),
	}

	if err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(convRef); err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get conversation")
			}
			if err := tx.Set(convRef, &conversationDoc{ID: id, CreatedAt: now}); err != nil {
				return goerr.Wrap(err, "failed to create conversation")
			}
		}

		if err := tx.Create(messages.Doc(userMsg.ID.String()), userMsg); err != nil {
			return goerr.Wrap(err, "failed to create user message")
		}
		if err := tx.Create(messages.Doc(assistantMsg.ID.String()), assistantMsg); err != nil {
			return goerr.Wrap(err, "failed to create assistant message")
		}
		return nil
	}); err != nil {
		return goerr.Wrap(err, "failed to append exchange", goerr.V("conversationID", id))
	}

	return nil
}

func (r *conversationRepository) History(ctx context.Context, id types.ConversationID, limit int) ([]*model.Message, error) {
	iter := r.messagesOf(id).
		OrderBy("CreatedAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	messages := make([]*model.Message, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate messages", goerr.V("conversationID", id))
		}

		var d messageDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal message", goerr.V("conversationID", id))
		}

		messages = append(messages, fromMessageDoc(&d))
	}

	// Firestore returned newest first; flip to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
