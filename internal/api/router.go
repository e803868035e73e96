package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"twitterapi/internal/api/middleware"
	"twitterapi/pkg/logger"
	"twitterapi/pkg/ratelimit"
)

// Rate limit groups.
const (
	GroupSignup = "signup"
	GroupWrite  = "write"
)

// Limit wraps a route with the rate limit of its group.
type Limit func(group string, next http.Handler) http.Handler

func NoLimit(_ string, next http.Handler) http.Handler {
	return next
}

type Handlers struct {
	Users     *UserHandler
	Tweets    *TweetHandler
	AuditLogs *AuditLogHandler
	Health    *HealthHandler
}

type RouterConfig struct {
	Limiter ratelimit.Limiter
	// Limits maps a group to its per-window budget; zero or missing disables it.
	Limits map[string]int
	Window time.Duration
	Logger logger.Logger
}

func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	limit := NoLimit
	if cfg.Limiter != nil {
		limit = func(group string, next http.Handler) http.Handler {
			return middleware.RateLimit(cfg.Limiter, group, cfg.Limits[group], cfg.Window)(next)
		}
	}

	h.Users.RegisterRoutes(mux, limit)
	h.Tweets.RegisterRoutes(mux, limit)
	if h.AuditLogs != nil {
		h.AuditLogs.RegisterRoutes(mux)
	}
	if h.Health != nil {
		h.Health.RegisterRoutes(mux)
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Chain(mux,
		middleware.Recover(cfg.Logger),
		middleware.TracingMiddleware,
		middleware.MetricsMiddleware,
		middleware.Logging(cfg.Logger),
	)
}
