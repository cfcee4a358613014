package router

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// StaticProviderID identifies the terminal always-available responder.
const StaticProviderID = types.ProviderID("static_fallback")

// llmProvider adapts a gollem client into a generation provider.
type llmProvider struct {
	id           types.ProviderID
	client       gollem.LLMClient
	systemPrompt string
}

var _ interfaces.GenerationProvider = &llmProvider{}

type ProviderOption func(*llmProvider)

func WithSystemPrompt(prompt string) ProviderOption {
	return func(p *llmProvider) {
		p.systemPrompt = prompt
	}
}

func NewLLMProvider(id types.ProviderID, client gollem.LLMClient, opts ...ProviderOption) interfaces.GenerationProvider {
	p := &llmProvider{
		id:     id,
		client: client,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *llmProvider) ID() types.ProviderID {
	return p.id
}

func (p *llmProvider) Generate(ctx context.Context, prompt string) (string, error) {
	var sessionOpts []gollem.SessionOption
	if p.systemPrompt != "" {
		sessionOpts = append(sessionOpts, gollem.WithSessionSystemPrompt(p.systemPrompt))
	}

	session, err := p.client.NewSession(ctx, sessionOpts...)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create session", goerr.V("provider", p.id))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "generation failed", goerr.V("provider", p.id))
	}
	if resp == nil || len(resp.Texts) == 0 {
		return "", goerr.New("provider returned no text", goerr.V("provider", p.id))
	}

	answer := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	if answer == "" {
		return "", goerr.New("provider returned empty text", goerr.V("provider", p.id))
	}

	return answer, nil
}

// staticProvider always answers with a fixed message. It terminates the
// fallback chain so total provider unavailability never becomes an error.
type staticProvider struct {
	message string
}

var _ interfaces.GenerationProvider = &staticProvider{}

func NewStaticProvider(message string) interfaces.GenerationProvider {
	return &staticProvider{message: message}
}

func (p *staticProvider) ID() types.ProviderID {
	return StaticProviderID
}

func (p *staticProvider) Generate(ctx context.Context, prompt string) (string, error) {
	return p.message, nil
}
