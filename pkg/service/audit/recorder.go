package audit

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/domain/model"
	"github.com/halcyon-lab/minerva/pkg/utils/async"
)

// Recorder writes audit entries in the background. Failed writes are
// logged and never affect the operation being audited.
type Recorder struct {
	repo  interfaces.AuditRepository
	actor string
}

type Option func(*Recorder)

func WithActor(actor string) Option {
	return func(r *Recorder) {
		r.actor = actor
	}
}

func New(repo interfaces.AuditRepository, opts ...Option) *Recorder {
	r := &Recorder{
		repo:  repo,
		actor: "system",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record dispatches an audit write without blocking the caller.
func (r *Recorder) Record(ctx context.Context, action, subject string, details map[string]string) {
	entry := &model.AuditEntry{
		Action:  action,
		Subject: subject,
		Actor:   r.actor,
		Details: details,
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := r.repo.Put(ctx, entry); err != nil {
			return goerr.Wrap(err, "failed to write audit entry", goerr.V("action", action))
		}
		return nil
	})
}
