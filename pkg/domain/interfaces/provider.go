package interfaces

import (
	"context"

	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// GenerationProvider generates a text answer from a prompt. Implementations
// wrap LLM backends; the router's terminal fallback is a provider that
// always succeeds with static text.
type GenerationProvider interface {
	ID() types.ProviderID
	Generate(ctx context.Context, prompt string) (string, error)
}
