package http

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const traceIDHeader = "X-Trace-ID"

type contextKey string

var traceIDKey = contextKey("traceID")

// withTraceID reuses the caller's X-Trace-ID or generates one, echoes it on
// the response and attaches a request logger carrying it.
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		l := h.logger.WithTraceID(traceID)
		ctx := context.WithValue(r.Context(), traceIDKey, traceID)
		w.Header().Set(traceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(l.WithContext(ctx)))
	})
}

func traceIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceIDKey).(string)
	return id
}
