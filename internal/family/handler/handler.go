package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"kinship/internal/family/models"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/platform/httputil"
	"kinship/pkg/requestcontext"
)

// DiscoveryService infers relationships from the existing graph.
type DiscoveryService interface {
	Discover(ctx context.Context, personID id.PersonID) ([]models.DiscoveryResult, error)
	DiscoverForAccount(ctx context.Context, userID id.UserID) ([]models.DiscoveryResult, error)
}

// MatchingService searches for likely duplicates of a new person.
type MatchingService interface {
	FindDuplicates(ctx context.Context, q *models.MatchQuery) ([]models.MatchCandidate, error)
}

// Handler wires family endpoints to the discovery and matching services.
type Handler struct {
	discovery     DiscoveryService
	matching      MatchingService
	logger        *slog.Logger
	matchThrottle func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithMatchThrottle guards the match endpoint, which is the expensive one.
func WithMatchThrottle(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.matchThrottle = mw
	}
}

func New(discovery DiscoveryService, matching MatchingService, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		discovery: discovery,
		matching:  matching,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts family endpoints on the router. Authentication is applied
// by the caller's middleware stack.
func (h *Handler) Register(r chi.Router) {
	r.Get("/family/discoveries", h.HandleMyDiscoveries)
	r.Get("/family/persons/{personID}/discoveries", h.HandlePersonDiscoveries)

	match := r
	if h.matchThrottle != nil {
		match = r.With(h.matchThrottle)
	}
	match.Post("/family/matches", h.HandleFindMatches)
}

// HandleMyDiscoveries handles GET /family/discoveries for the requester's own person.
func (h *Handler) HandleMyDiscoveries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	results, err := h.discovery.DiscoverForAccount(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "discovery failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDiscoveryResults(results))
}

// HandlePersonDiscoveries handles GET /family/persons/{personID}/discoveries.
func (h *Handler) HandlePersonDiscoveries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if _, ok := h.requireUser(w, ctx); !ok {
		return
	}

	personID, err := id.ParsePersonID(chi.URLParam(r, "personID"))
	if err != nil {
		h.logger.WarnContext(ctx, "invalid person id",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	results, err := h.discovery.Discover(ctx, personID)
	if err != nil {
		h.logger.ErrorContext(ctx, "discovery failed",
			"request_id", requestID,
			"person_id", personID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromDiscoveryResults(results))
}

// HandleFindMatches handles POST /family/matches.
func (h *Handler) HandleFindMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID, ok := h.requireUser(w, ctx)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[MatchRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	candidates, err := h.matching.FindDuplicates(ctx, req.Query(userID))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.WarnContext(ctx, "match query rejected",
				"request_id", requestID,
				"error", err,
			)
		} else {
			h.logger.ErrorContext(ctx, "duplicate search failed",
				"request_id", requestID,
				"user_id", userID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	resp := FromMatchCandidates(candidates)
	h.logger.InfoContext(ctx, "duplicate search completed",
		"request_id", requestID,
		"user_id", userID,
		"candidates", len(resp.Candidates),
		"blocking", resp.Blocking,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) requireUser(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}
