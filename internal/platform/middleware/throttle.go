package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"kinship/internal/platform/metrics"
	id "kinship/pkg/domain"
	"kinship/pkg/platform/httputil"
	"kinship/pkg/requestcontext"
)

const (
	throttleIdleTTL    = 10 * time.Minute
	throttleSweepAbove = 10_000
)

type throttleEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle is a per-requester token bucket. Requests without an
// authenticated user share the zero-id bucket.
type Throttle struct {
	mu       sync.Mutex
	limiters map[id.UserID]*throttleEntry
	limit    rate.Limit
	burst    int
	route    string
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// NewThrottle allows ratePerSecond sustained requests per requester with the given burst.
func NewThrottle(ratePerSecond float64, burst int, route string, logger *slog.Logger, m *metrics.Metrics) *Throttle {
	if burst < 1 {
		burst = 1
	}
	return &Throttle{
		limiters: make(map[id.UserID]*throttleEntry),
		limit:    rate.Limit(ratePerSecond),
		burst:    burst,
		route:    route,
		logger:   logger,
		metrics:  m,
	}
}

func (t *Throttle) limiterFor(userID id.UserID, now time.Time) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.limiters) > throttleSweepAbove {
		for k, e := range t.limiters {
			if now.Sub(e.lastSeen) > throttleIdleTTL {
				delete(t.limiters, k)
			}
		}
	}

	e, ok := t.limiters[userID]
	if !ok {
		e = &throttleEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.limiters[userID] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Middleware rejects requests over budget with 429 and a Retry-After hint.
func (t *Throttle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := requestcontext.UserID(ctx)
		now := time.Now()

		reservation := t.limiterFor(userID, now).ReserveN(now, 1)
		if !reservation.OK() {
			t.reject(w, r, userID, 1)
			return
		}
		if delay := reservation.DelayFrom(now); delay > 0 {
			reservation.CancelAt(now)
			t.reject(w, r, userID, int(math.Ceil(delay.Seconds())))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(t.burst))
		next.ServeHTTP(w, r)
	})
}

func (t *Throttle) reject(w http.ResponseWriter, r *http.Request, userID id.UserID, retryAfter int) {
	ctx := r.Context()
	t.logger.WarnContext(ctx, "request throttled",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", userID,
		"route", t.route,
	)
	t.metrics.IncrementRateLimited(t.route)
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(t.burst))
	w.Header().Set("X-RateLimit-Remaining", "0")
	httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate_limit_exceeded",
		"message":     "You have exceeded your request quota for this operation.",
		"retry_after": retryAfter,
	})
}
