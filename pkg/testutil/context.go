package testutil

import (
	"net/http"
	"time"

	id "kinship/pkg/domain"
	"kinship/pkg/requestcontext"
)

// WithUserID authenticates req as the auth middleware would. An unparsable
// userID leaves the request anonymous.
func WithUserID(req *http.Request, userID string) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithRequestTime pins the request clock used for date-of-birth checks.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
