package async

import (
	"context"

	"github.com/halcyon-lab/minerva/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatch runs the handler in a new goroutine, detached from the caller's
// cancellation. The caller's logger is carried over; errors and panics are
// logged, never propagated. Used for fire-and-forget work such as audit
// writes that must not affect the request outcome.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
