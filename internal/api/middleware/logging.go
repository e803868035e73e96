package middleware

import (
	"net/http"
	"time"

	"twitterapi/pkg/logger"
)

// Logging writes one line per request, at a level that follows the status class.
func Logging(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			next.ServeHTTP(rw, r)

			fields := map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"route":       route(r),
				"status":      rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			}

			switch {
			case rw.statusCode >= 500:
				log.ErrorContext(r.Context(), "Request completed", fields)
			case rw.statusCode >= 400:
				log.WarnContext(r.Context(), "Request completed", fields)
			default:
				log.InfoContext(r.Context(), "Request completed", fields)
			}
		})
	}
}
