package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/halcyon-lab/minerva/pkg/domain/types"
)

// Sink receives pipeline events for metric export. Implementations must
// be safe for concurrent use and must never fail the caller.
type Sink interface {
	// CountChat records a completed chat request.
	CountChat(ctx context.Context, provider types.ProviderID, fallback, cached bool)

	// CountProviderCall records one generation attempt against a provider.
	CountProviderCall(ctx context.Context, provider types.ProviderID, success bool)

	// CountBreakerTransition records a circuit breaker state change.
	CountBreakerTransition(ctx context.Context, provider types.ProviderID, state types.BreakerState)

	// ObserveRetrieval records how many context records a query matched.
	ObserveRetrieval(ctx context.Context, matches int)
}

// Noop discards all events. Used when no OTLP endpoint is configured.
type Noop struct{}

var _ Sink = &Noop{}

func (n *Noop) CountChat(context.Context, types.ProviderID, bool, bool)                {}
func (n *Noop) CountProviderCall(context.Context, types.ProviderID, bool)              {}
func (n *Noop) CountBreakerTransition(context.Context, types.ProviderID, types.BreakerState) {
}
func (n *Noop) ObserveRetrieval(context.Context, int) {}

// OTelSink exports pipeline events via an OpenTelemetry meter.
type OTelSink struct {
	chatCount        metric.Int64Counter
	providerCalls    metric.Int64Counter
	breakerChanges   metric.Int64Counter
	retrievalMatches metric.Int64Histogram
}

var _ Sink = &OTelSink{}

func NewOTelSink(meter metric.Meter) *OTelSink {
	s := &OTelSink{}
	s.chatCount, _ = meter.Int64Counter("minerva.chat.count",
		metric.WithDescription("Completed chat requests"))
	s.providerCalls, _ = meter.Int64Counter("minerva.provider.calls",
		metric.WithDescription("Generation attempts per provider"))
	s.breakerChanges, _ = meter.Int64Counter("minerva.breaker.transitions",
		metric.WithDescription("Circuit breaker state changes"))
	s.retrievalMatches, _ = meter.Int64Histogram("minerva.retrieval.matches",
		metric.WithDescription("Context records matched per query"))
	return s
}

func (s *OTelSink) CountChat(ctx context.Context, provider types.ProviderID, fallback, cached bool) {
	if s.chatCount == nil {
		return
	}
	s.chatCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("minerva.provider", provider.String()),
		attribute.Bool("minerva.fallback", fallback),
		attribute.Bool("minerva.cached", cached),
	))
}

func (s *OTelSink) CountProviderCall(ctx context.Context, provider types.ProviderID, success bool) {
	if s.providerCalls == nil {
		return
	}
	s.providerCalls.Add(ctx, 1, metric.WithAttributes(
		attribute.String("minerva.provider", provider.String()),
		attribute.Bool("minerva.success", success),
	))
}

func (s *OTelSink) CountBreakerTransition(ctx context.Context, provider types.ProviderID, state types.BreakerState) {
	if s.breakerChanges == nil {
		return
	}
	s.breakerChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String("minerva.provider", provider.String()),
		attribute.String("minerva.state", state.String()),
	))
}

func (s *OTelSink) ObserveRetrieval(ctx context.Context, matches int) {
	if s.retrievalMatches == nil {
		return
	}
	s.retrievalMatches.Record(ctx, int64(matches))
}
