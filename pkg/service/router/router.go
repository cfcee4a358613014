package router

import (
	"context"
	"time"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/domain/types"
	"github.com/halcyon-lab/minerva/pkg/service/metrics"
	"github.com/halcyon-lab/minerva/pkg/utils/logging"
)

const (
	// DefaultFailureThreshold is the consecutive failure count that trips
	// a breaker OPEN.
	DefaultFailureThreshold = 5

	// DefaultCooldown is how long an OPEN breaker blocks calls before a
	// HALF_OPEN recovery probe.
	DefaultCooldown = 2 * time.Minute

	// DefaultAttemptTimeout bounds a single provider call. Exceeding it
	// counts as a provider failure.
	DefaultAttemptTimeout = 30 * time.Second
)

// DefaultFallbackMessage is returned when no provider can answer.
const DefaultFallbackMessage = "I'm temporarily unable to reach my language model providers. " +
	"Please try rephrasing your question or come back in a few minutes."

// Result is the outcome of a routed generation call.
type Result struct {
	Answer   string
	Provider types.ProviderID
	Fallback bool
}

// Router tries generation providers in priority order behind per-provider
// circuit breakers, ending in a static responder. Generate never returns
// an error: total provider unavailability is absorbed and observable only
// through logs and metrics.
type Router struct {
	providers      []interfaces.GenerationProvider
	static         interfaces.GenerationProvider
	gate           *gate
	sink           metrics.Sink
	attemptTimeout time.Duration
}

type Option func(*Router)

func WithFailureThreshold(threshold int) Option {
	return func(r *Router) {
		r.gate.threshold = threshold
	}
}

func WithCooldown(cooldown time.Duration) Option {
	return func(r *Router) {
		r.gate.cooldown = cooldown
	}
}

func WithAttemptTimeout(timeout time.Duration) Option {
	return func(r *Router) {
		r.attemptTimeout = timeout
	}
}

func WithFallbackMessage(message string) Option {
	return func(r *Router) {
		r.static = NewStaticProvider(message)
	}
}

func WithMetrics(sink metrics.Sink) Option {
	return func(r *Router) {
		r.sink = sink
		r.gate.sink = sink
	}
}

func New(breakers interfaces.BreakerRepository, providers []interfaces.GenerationProvider, opts ...Option) *Router {
	r := &Router{
		providers:      providers,
		static:         NewStaticProvider(DefaultFallbackMessage),
		sink:           &metrics.Noop{},
		attemptTimeout: DefaultAttemptTimeout,
		gate: &gate{
			repo:      breakers,
			threshold: DefaultFailureThreshold,
			cooldown:  DefaultCooldown,
			sink:      &metrics.Noop{},
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Providers lists the configured provider IDs in priority order,
// excluding the terminal static responder.
func (r *Router) Providers() []types.ProviderID {
	ids := make([]types.ProviderID, 0, len(r.providers))
	for _, p := range r.providers {
		ids = append(ids, p.ID())
	}
	return ids
}

// Generate routes the prompt through the provider chain. The first
// successful provider wins; a non-primary provider or the static
// responder marks the result as a fallback.
func (r *Router) Generate(ctx context.Context, prompt string) *Result {
	logger := logging.From(ctx)

	for i, provider := range r.providers {
		if ctx.Err() != nil {
			logger.Warn("request deadline expired mid-chain, returning static fallback")
			break
		}

		if !r.gate.allow(ctx, provider.ID()) {
			logger.Info("skipping provider with open circuit", "provider", provider.ID())
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		answer, err := provider.Generate(attemptCtx, prompt)
		cancel()

		if err == nil {
			r.gate.success(ctx, provider.ID())
			r.sink.CountProviderCall(ctx, provider.ID(), true)
			return &Result{
				Answer:   answer,
				Provider: provider.ID(),
				Fallback: i > 0,
			}
		}

		if ctx.Err() != nil {
			// The caller's deadline expired, not the provider's attempt
			// budget. Do not charge the provider for it.
			logger.Warn("request deadline expired mid-chain, returning static fallback",
				"provider", provider.ID())
			break
		}

		r.gate.failure(ctx, provider.ID())
		r.sink.CountProviderCall(ctx, provider.ID(), false)
		logger.Warn("provider failed, trying next",
			"provider", provider.ID(),
			"error", err)
	}

	logger.Error("all generation providers unavailable, serving static fallback")

	// The static responder cannot fail; its context no longer matters.
	answer, _ := r.static.Generate(context.WithoutCancel(ctx), prompt)
	return &Result{
		Answer:   answer,
		Provider: r.static.ID(),
		Fallback: true,
	}
}
