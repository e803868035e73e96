package api

import (
	"context"
	"database/sql"
	"net/http"
	"sort"
	"time"

	"twitterapi/pkg/database"
	"twitterapi/pkg/logger"
)

// Pinger is a dependency the service cannot work without.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	checks  map[string]Pinger
	logger  logger.Logger
	version string
	timeout time.Duration
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Services  map[string]interface{} `json:"services"`
	Version   string                 `json:"version"`
}

func NewHealthHandler(logger logger.Logger, version string) *HealthHandler {
	return &HealthHandler{
		checks:  make(map[string]Pinger),
		logger:  logger,
		version: version,
		timeout: 2 * time.Second,
	}
}

func (h *HealthHandler) AddCheck(name string, p Pinger) {
	h.checks[name] = p
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	services, healthy := h.runChecks(r.Context())

	status := "healthy"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Services:  services,
		Version:   h.version,
	})
}

func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, healthy := h.runChecks(r.Context()); !healthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HealthHandler) runChecks(ctx context.Context) (map[string]interface{}, bool) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	services := make(map[string]interface{}, len(names))
	healthy := true

	for _, name := range names {
		p := h.checks[name]
		pingCtx, cancel := context.WithTimeout(ctx, h.timeout)
		err := p.PingContext(pingCtx)
		cancel()

		result := map[string]interface{}{"status": "healthy"}
		if db, ok := p.(*sql.DB); ok {
			for k, v := range database.Stats(db) {
				result[k] = v
			}
		}
		if err != nil {
			healthy = false
			result["status"] = "unhealthy"
			result["error"] = err.Error()
			h.logger.WarnContext(ctx, "Health check failed", map[string]interface{}{"service": name, "error": err.Error()})
		}
		services[name] = result
	}

	return services, healthy
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /health/live", h.Live)
	mux.HandleFunc("GET /health/ready", h.Ready)
}
