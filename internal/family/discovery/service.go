// Package discovery infers relationships a person has not recorded yet by
// walking two hops through the ones they have.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kinship/internal/family/metrics"
	"kinship/internal/family/models"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/platform/sentinel"
)

// MaxResults caps the suggestions returned by one Discover call.
const MaxResults = 20

// Graph is the read surface discovery needs from the store.
type Graph interface {
	ActiveRelationshipsOf(ctx context.Context, personID id.PersonID) ([]models.Edge, error)
	PersonsByIDs(ctx context.Context, ids []id.PersonID) ([]*models.Person, error)
	PersonByAccount(ctx context.Context, userID id.UserID) (*models.Person, error)
}

// Service runs the inference patterns.
type Service struct {
	graph    Graph
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	patterns []pattern
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

func New(graph Graph, opts ...Option) *Service {
	s := &Service{
		graph:    graph,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer("kinship/family/discovery"),
		patterns: defaultPatterns(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Discover returns relationship suggestions for personID. A missing person or
// one with no active relationships yields an empty list.
func (s *Service) Discover(ctx context.Context, personID id.PersonID) ([]models.DiscoveryResult, error) {
	ctx, span := s.tracer.Start(ctx, "discovery.Discover",
		trace.WithAttributes(attribute.String("person_id", personID.String())),
	)
	defer span.End()
	start := time.Now()

	results, err := s.discover(ctx, personID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("results", len(results)))
	s.metrics.ObserveDiscovery(time.Since(start), len(results))
	return results, nil
}

// DiscoverForAccount runs Discover for the person linked to userID. An account
// without a person record yields an empty list.
func (s *Service) DiscoverForAccount(ctx context.Context, userID id.UserID) ([]models.DiscoveryResult, error) {
	person, err := s.graph.PersonByAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.logger.InfoContext(ctx, "no person linked to account", "user_id", userID)
			return []models.DiscoveryResult{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve requester person")
	}
	return s.Discover(ctx, person.ID)
}

func (s *Service) discover(ctx context.Context, personID id.PersonID) ([]models.DiscoveryResult, error) {
	anchors, err := s.graph.PersonsByIDs(ctx, []id.PersonID{personID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load person")
	}
	if len(anchors) == 0 {
		s.logger.WarnContext(ctx, "discovery requested for unknown person", "person_id", personID)
		return []models.DiscoveryResult{}, nil
	}

	edges, err := s.graph.ActiveRelationshipsOf(ctx, personID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load relationships")
	}
	if len(edges) == 0 {
		return []models.DiscoveryResult{}, nil
	}

	exclude := models.ConnectedIDs(edges)
	exclude.Add(personID)

	var collected []models.DiscoveryResult
	for _, p := range s.patterns {
		collected = append(collected, s.runPattern(ctx, p, edges, exclude)...)
	}
	return rank(collected), nil
}

// runPattern isolates one pattern: an error or panic costs only its results.
func (s *Service) runPattern(ctx context.Context, p pattern, edges []models.Edge, exclude models.PersonIDSet) (results []models.DiscoveryResult) {
	ctx, span := s.tracer.Start(ctx, "discovery.pattern",
		trace.WithAttributes(attribute.String("pattern", p.name)),
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			s.patternFailed(ctx, span, p.name, fmt.Errorf("panic: %v", r))
			results = nil
		}
	}()

	results, err := p.run(ctx, s.graph, s.logger, edges, exclude)
	if err != nil {
		s.patternFailed(ctx, span, p.name, err)
		return nil
	}
	span.SetAttributes(attribute.Int("results", len(results)))
	return results
}

func (s *Service) patternFailed(ctx context.Context, span trace.Span, name string, err error) {
	s.logger.ErrorContext(ctx, "discovery pattern failed",
		"pattern", name,
		"error", err,
	)
	s.metrics.IncrementPatternFailure(name)
	span.RecordError(err)
	span.SetStatus(codes.Error, "pattern failed")
}

// rank dedups by candidate and orders the survivors.
func rank(results []models.DiscoveryResult) []models.DiscoveryResult {
	best := make(map[id.PersonID]int, len(results))
	out := make([]models.DiscoveryResult, 0, len(results))
	for _, r := range results {
		i, seen := best[r.Person.ID]
		if !seen {
			best[r.Person.ID] = len(out)
			out = append(out, r)
			continue
		}
		if closer(r, out[i]) {
			out[i] = r
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Proximity != b.Proximity {
			return a.Proximity < b.Proximity
		}
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		an, bn := strings.ToLower(a.Person.GivenName), strings.ToLower(b.Person.GivenName)
		if an != bn {
			return an < bn
		}
		return a.Person.ID.String() < b.Person.ID.String()
	})

	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	return out
}

func closer(a, b models.DiscoveryResult) bool {
	if a.Proximity != b.Proximity {
		return a.Proximity < b.Proximity
	}
	return a.Priority < b.Priority
}
