package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const timeoutBody = `{"error": "request timeout", "message": "the request took too long to process"}`

// TimeoutMiddleware bounds every request on the wrapped router. The handler
// runs with a deadline on its context; once the deadline passes the client
// gets a 503 and any late writes from the handler are discarded.
func TimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		logged := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if r.Context().Err() == context.DeadlineExceeded {
				zap.S().Warnw("request timeout",
					"path", r.URL.Path,
					"method", r.Method,
					"timeout", timeout)
			}
		})
		return http.TimeoutHandler(logged, timeout, timeoutBody)
	}
}
