package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/aurelia-jewels/aurelia-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// maxRequestIDLength caps client-supplied correlation ids so a hostile
// header cannot bloat every log line.
const maxRequestIDLength = 64

// RequestID echoes the caller's correlation id, or mints one, and threads
// it through the response header and the request-scoped logger. Ids that
// are oversized or contain non-token characters are replaced, not trusted.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := sanitizeRequestID(r.Header.Get(requestIDHeader))
			if reqID == "" {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sanitizeRequestID(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxRequestIDLength {
		return ""
	}
	for _, c := range raw {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return ""
		}
	}
	return raw
}
