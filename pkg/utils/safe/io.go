package safe

import (
	"context"
	"io"
	"log/slog"

	"github.com/halcyon-lab/minerva/pkg/utils/logging"
)

// Write writes data to w, logging a failure instead of returning it.
// Response bodies already past the header stage have no error channel
// back to the client, so the write error is only actionable in logs.
// A nil writer is a no-op.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Error("Failed to write", slog.Any("error", err))
	}
}

// Close closes the closer, logging a failure instead of returning it.
// A nil closer is a no-op.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}
