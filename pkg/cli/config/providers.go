package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/claude"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/m-mizutani/gollem/llm/openai"
	"github.com/urfave/cli/v3"
)

// Gemini configures the Vertex AI Gemini client. It doubles as the
// embedding backend when configured.
type Gemini struct {
	projectID string
	location  string
}

func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for the Gemini client",
			Sources:     cli.EnvVars("MINERVA_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud region for the Gemini client",
			Value:       "us-central1",
			Sources:     cli.EnvVars("MINERVA_GEMINI_LOCATION"),
			Destination: &g.location,
		},
	}
}

func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
	}
}

// Configure builds the Gemini client, or returns nil when no project
// is set and the provider is simply absent from the chain.
func (g *Gemini) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if g.projectID == "" {
		return nil, nil
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	return client, nil
}

// Claude configures the Anthropic client used as a secondary provider.
type Claude struct {
	apiKey string
}

func (c *Claude) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "claude-api-key",
			Usage:       "Anthropic API key",
			Sources:     cli.EnvVars("MINERVA_CLAUDE_API_KEY"),
			Destination: &c.apiKey,
		},
	}
}

// Configure builds the Claude client, or returns nil when no API key
// is set.
func (c *Claude) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	client, err := claude.New(ctx, c.apiKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Claude client")
	}
	return client, nil
}

// OpenAI configures the OpenAI client used as a tertiary provider and
// as the embedding backend when Gemini is absent.
type OpenAI struct {
	apiKey string
}

func (o *OpenAI) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("MINERVA_OPENAI_API_KEY"),
			Destination: &o.apiKey,
		},
	}
}

// Configure builds the OpenAI client, or returns nil when no API key
// is set.
func (o *OpenAI) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if o.apiKey == "" {
		return nil, nil
	}

	client, err := openai.New(ctx, o.apiKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create OpenAI client")
	}
	return client, nil
}
