package usecase

import (
	"time"

	"github.com/halcyon-lab/minerva/pkg/domain/interfaces"
	"github.com/halcyon-lab/minerva/pkg/service/audit"
	"github.com/halcyon-lab/minerva/pkg/service/metrics"
	"github.com/halcyon-lab/minerva/pkg/service/router"
	"github.com/halcyon-lab/minerva/pkg/service/vector"
)

const (
	// DefaultCacheTTL is how long a generated answer stays reusable.
	DefaultCacheTTL = time.Hour

	// DefaultHistoryLimit is the number of recent messages included in the
	// prompt as conversation history.
	DefaultHistoryLimit = 10
)

// Persona describes who the assistant speaks for in the system prompt.
type Persona struct {
	AssistantName string
	SubjectName   string
}

type UseCases struct {
	repo     interfaces.Repository
	vector   *vector.Service
	router   *router.Router
	recorder *audit.Recorder
	sink     metrics.Sink

	persona      Persona
	cacheTTL     time.Duration
	historyLimit int
	contextLimit int
	threshold    float64
}

type Option func(*UseCases)

func WithAuditRecorder(recorder *audit.Recorder) Option {
	return func(uc *UseCases) {
		uc.recorder = recorder
	}
}

func WithMetrics(sink metrics.Sink) Option {
	return func(uc *UseCases) {
		uc.sink = sink
	}
}

func WithPersona(persona Persona) Option {
	return func(uc *UseCases) {
		uc.persona = persona
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(uc *UseCases) {
		uc.cacheTTL = ttl
	}
}

func WithHistoryLimit(limit int) Option {
	return func(uc *UseCases) {
		uc.historyLimit = limit
	}
}

func WithContextLimit(limit int) Option {
	return func(uc *UseCases) {
		uc.contextLimit = limit
	}
}

func WithThreshold(threshold float64) Option {
	return func(uc *UseCases) {
		uc.threshold = threshold
	}
}

func New(repo interfaces.Repository, vectorSvc *vector.Service, routerSvc *router.Router, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		vector: vectorSvc,
		router: routerSvc,
		sink:   &metrics.Noop{},
		persona: Persona{
			AssistantName: "Minerva",
			SubjectName:   "the team",
		},
		cacheTTL:     DefaultCacheTTL,
		historyLimit: DefaultHistoryLimit,
		contextLimit: vector.DefaultLimit,
		threshold:    vector.DefaultThreshold,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.recorder == nil {
		uc.recorder = audit.New(repo.Audit())
	}

	return uc
}
