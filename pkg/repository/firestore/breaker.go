package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

const breakersCollection = "breakers"

type breakerDoc struct {
	ProviderID          types.ProviderID   `firestore:"ProviderID"`
	State               types.BreakerState `firestore:"State"`
	ConsecutiveFailures int                `firestore:"ConsecutiveFailures"`
	OpenedAt            time.Time          `firestore:"OpenedAt"`
	Version             int64              `firestore:"Version"`
	UpdatedAt           time.Time          `firestore:"UpdatedAt"`
}

func toBreakerDoc(b *model.Breaker) *breakerDoc {
	return &breakerDoc{
		ProviderID:          b.ProviderID,
		State:               b.State,
		ConsecutiveFailures: b.ConsecutiveFailures,
		OpenedAt:            b.OpenedAt,
		Version:             b.Version,
		UpdatedAt:           b.UpdatedAt,
	}
}

func fromBreakerDoc(d *breakerDoc) *model.Breaker {
	return &model.Breaker{
		ProviderID:          d.ProviderID,
		State:               d.State.Normalize(),
		ConsecutiveFailures: d.ConsecutiveFailures,
		OpenedAt:            d.OpenedAt,
		Version:             d.Version,
		UpdatedAt:           d.UpdatedAt,
	}
}

type breakerRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newBreakerRepository(client *firestore.Client) *breakerRepository {
	return &breakerRepository{client: client}
}

func (r *breakerRepository) collection() *firestore.CollectionRef {
	name := breakersCollection
	if r.collectionPrefix != "" {
		name = r.collectionPrefix + "_" + name
	}
	return r.client.Collection(name)
}

func (r *breakerRepository) Get(ctx context.Context, providerID types.ProviderID) (*model.Breaker, error) {
	doc, err := r.collection().Doc(providerID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.NewBreaker(providerID), nil
		}
		return nil, goerr.Wrap(err, "failed to get breaker", goerr.V("providerID", providerID))
	}

	var d breakerDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal breaker", goerr.V("providerID", providerID))
	}

	return fromBreakerDoc(&d), nil
}

// Update writes the breaker record only if the stored version still
// matches breaker.Version, then increments the stored version. The
// read-compare-write runs inside a transaction so concurrent writers
// cannot both succeed on the same base version.
func (r *breakerRepository) Update(ctx context.Context, breaker *model.Breaker) error {
	docRef := r.collection().Doc(breaker.ProviderID.String())

	if err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var storedVersion int64
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to get breaker")
			}
		} else {
			var d breakerDoc
			if err := doc.DataTo(&d); err != nil {
				return goerr.Wrap(err, "failed to unmarshal breaker")
			}
			storedVersion = d.Version
		}

		if storedVersion != breaker.Version {
			return goerr.Wrap(ErrVersionConflict, "breaker version mismatch",
				goerr.V("providerID", breaker.ProviderID),
				goerr.V("expected", breaker.Version),
				goerr.V("stored", storedVersion))
		}

		next := toBreakerDoc(breaker)
		next.Version = breaker.Version + 1
		return tx.Set(docRef, next)
	}); err != nil {
		return goerr.Wrap(err, "failed to update breaker", goerr.V("providerID", breaker.ProviderID))
	}

	return nil
}
