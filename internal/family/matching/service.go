// Package matching finds existing persons who may be the same individual as
// a person about to be created.
//
// Address and religion act as hard filters that bound the candidate pool;
// only the name is scored. Unlike discovery, a failing pool query fails the
// whole search since a partial pool would silently weaken duplicate
// protection.
package matching

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kinship/internal/family/assembler"
	"kinship/internal/family/metrics"
	"kinship/internal/family/models"
	"kinship/internal/family/namescore"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/platform/sentinel"
	"kinship/pkg/requestcontext"
)

const (
	// AcceptanceThreshold is the minimum name score for a candidate.
	AcceptanceThreshold = 60.0
	// MaxResults caps the candidates returned by one search.
	MaxResults = 10
)

// Store is the read surface matching needs.
type Store interface {
	PersonsSharingAddress(ctx context.Context, c models.AddressCriteria) (models.PersonIDSet, error)
	PersonsSharingReligion(ctx context.Context, c models.ReligionCriteria) (models.PersonIDSet, error)
	PersonsByIDs(ctx context.Context, ids []id.PersonID) ([]*models.Person, error)
	PersonByAccount(ctx context.Context, userID id.UserID) (*models.Person, error)
	ActiveRelationshipsOf(ctx context.Context, personID id.PersonID) ([]models.Edge, error)
}

type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
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

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		tracer: otel.Tracer("kinship/family/matching"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindDuplicates returns up to MaxResults candidates scoring at least
// AcceptanceThreshold, best first.
func (s *Service) FindDuplicates(ctx context.Context, q *models.MatchQuery) ([]models.MatchCandidate, error) {
	if err := q.Validate(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "matching.FindDuplicates",
		trace.WithAttributes(
			attribute.String("exclusion_mode", string(q.ExclusionModeOrDefault())),
			attribute.String("address.country", q.Address.Country),
		),
	)
	defer span.End()
	start := time.Now()

	candidates, err := s.findDuplicates(ctx, q)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "match failed")
		return nil, err
	}

	high := 0
	for _, c := range candidates {
		if c.HighConfidence {
			high++
		}
	}
	span.SetAttributes(
		attribute.Int("results", len(candidates)),
		attribute.Int("high_confidence", high),
	)
	s.metrics.ObserveMatch(time.Since(start), len(candidates), high)
	return candidates, nil
}

func (s *Service) findDuplicates(ctx context.Context, q *models.MatchQuery) ([]models.MatchCandidate, error) {
	addressIDs, err := s.store.PersonsSharingAddress(ctx, q.Address)
	if err != nil {
		s.logger.ErrorContext(ctx, "address pool query failed", "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query address pool")
	}
	religionIDs, err := s.store.PersonsSharingReligion(ctx, q.Religion)
	if err != nil {
		s.logger.ErrorContext(ctx, "religion pool query failed", "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query religion pool")
	}

	candidateIDs := addressIDs.Intersect(religionIDs)
	s.metrics.ObservePoolSize("address", len(addressIDs))
	s.metrics.ObservePoolSize("religion", len(religionIDs))
	s.metrics.ObservePoolSize("intersection", len(candidateIDs))
	if len(candidateIDs) == 0 {
		return []models.MatchCandidate{}, nil
	}

	persons, err := s.store.PersonsByIDs(ctx, candidateIDs.Sorted())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidates")
	}

	self, connected, err := s.requesterCircle(ctx, q.RequesterID)
	if err != nil {
		return nil, err
	}
	mode := q.ExclusionModeOrDefault()

	out := make([]models.MatchCandidate, 0, len(persons))
	for _, p := range persons {
		if p.Gender != q.Gender {
			continue
		}
		flags := assembler.Flags{
			IsSelf:           p.ID == self,
			AlreadyConnected: connected.Has(p.ID),
		}
		if mode == models.ExclusionDrop && (flags.IsSelf || flags.AlreadyConnected) {
			continue
		}
		score := namescore.Score(q.FirstName, q.LastName, p.GivenName, p.FamilyName)
		if score < AcceptanceThreshold {
			continue
		}
		out = append(out, assembler.MatchCandidate(p, score, q, flags))
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
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
	return out, nil
}

// requesterCircle resolves the requester's own person and everyone they are
// actively connected to. A requester without a person record excludes nothing.
func (s *Service) requesterCircle(ctx context.Context, userID id.UserID) (id.PersonID, models.PersonIDSet, error) {
	self, err := s.store.PersonByAccount(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.PersonID{}, models.NewPersonIDSet(), nil
		}
		return id.PersonID{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve requester person")
	}
	edges, err := s.store.ActiveRelationshipsOf(ctx, self.ID)
	if err != nil {
		return id.PersonID{}, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load requester relationships")
	}
	return self.ID, models.ConnectedIDs(edges), nil
}
