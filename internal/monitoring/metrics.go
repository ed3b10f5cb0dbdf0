package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the engine's OpenTelemetry counters. A nil *Metrics is
// valid and records nothing, so tests and the seeder can skip metrics
// setup entirely.
type Metrics struct {
	swipesRecorded    metric.Int64Counter
	matchesCreated    metric.Int64Counter
	candidateRequests metric.Int64Counter
	cacheHits         metric.Int64Counter
}

// NewMetrics registers the engine counters on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("astromatch/engine")

	swipes, err := meter.Int64Counter("engine.swipes.recorded",
		metric.WithDescription("Swipes accepted into the ledger"))
	if err != nil {
		return nil, fmt.Errorf("failed to create swipe counter: %w", err)
	}

	matches, err := meter.Int64Counter("engine.matches.created",
		metric.WithDescription("Mutual matches promoted"))
	if err != nil {
		return nil, fmt.Errorf("failed to create match counter: %w", err)
	}

	candidates, err := meter.Int64Counter("engine.candidates.requests",
		metric.WithDescription("Candidate ranking requests served"))
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate counter: %w", err)
	}

	hits, err := meter.Int64Counter("engine.cache.hits",
		metric.WithDescription("Reads answered from the cache"))
	if err != nil {
		return nil, fmt.Errorf("failed to create cache counter: %w", err)
	}

	return &Metrics{
		swipesRecorded:    swipes,
		matchesCreated:    matches,
		candidateRequests: candidates,
		cacheHits:         hits,
	}, nil
}

// SwipeRecorded counts an accepted swipe, labeled by action.
func (m *Metrics) SwipeRecorded(ctx context.Context, action string) {
	if m == nil {
		return
	}
	m.swipesRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

// MatchCreated counts a new mutual match.
func (m *Metrics) MatchCreated(ctx context.Context) {
	if m == nil {
		return
	}
	m.matchesCreated.Add(ctx, 1)
}

// CandidateRequest counts a candidate ranking request and whether the
// cache answered it.
func (m *Metrics) CandidateRequest(ctx context.Context, cacheHit bool) {
	if m == nil {
		return
	}
	m.candidateRequests.Add(ctx, 1, metric.WithAttributes(attribute.Bool("cache_hit", cacheHit)))
	if cacheHit {
		m.cacheHits.Add(ctx, 1)
	}
}
