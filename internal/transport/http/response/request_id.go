package response

import (
	"net/http"

	appCtx "github.com/avoronov/eventhub/internal/pkg/context"
)

// RequestIDFromRequest prefers the id stamped by the request-id middleware
// and falls back to the inbound header.
func RequestIDFromRequest(r *http.Request) string {
	if v := appCtx.RequestID(r.Context()); v != "" {
		return v
	}
	if v := r.Header.Get("X-Request-Id"); v != "" {
		return v
	}
	return r.Header.Get("X-Request-ID")
}
