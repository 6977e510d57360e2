package api

import (
	"context"
	"time"
)

// QueryTimeout bounds any single store read issued on behalf of a request.
const QueryTimeout = 10 * time.Second

// WithQueryTimeout derives a deadline-bound context for a store query. A nil
// parent falls back to Background so callers can pass one through untouched.
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}
