package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/zenberry/zenchat/internal/api"
)

// ChatRateLimit caps chat requests per client IP per minute. The orchestrator
// itself never throttles; this is the outer layer it relies on to bound call
// volume into the completion engine.
func ChatRateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 10
	}

	return httprate.Limit(
		requestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			api.Error(w, http.StatusTooManyRequests, "too many chat requests, slow down")
		}),
	)
}
