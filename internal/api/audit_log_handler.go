package api

import (
	"net/http"

	"twitterapi/internal/domain"
	"twitterapi/internal/validation"
	"twitterapi/pkg/logger"
)

type AuditLogHandler struct {
	service domain.AuditLogService
	logger  logger.Logger
}

func NewAuditLogHandler(service domain.AuditLogService, logger logger.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AuditLogHandler) GetEntityLogs(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityType(r.URL.Query().Get("entity_type"))
	entityID := r.URL.Query().Get("entity_id")

	if !entityType.Valid() {
		writeValidationError(w, &validation.Error{Fields: []validation.FieldError{{
			Field:   "entity_type",
			Rule:    "oneof",
			Message: "must be one of user, tweet",
		}}})
		return
	}

	if entityID == "" {
		writeValidationError(w, &validation.Error{Fields: []validation.FieldError{{
			Field:   "entity_id",
			Rule:    "required",
			Message: "field required",
		}}})
		return
	}

	logs, err := h.service.GetEntityLogs(r.Context(), entityType, entityID)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}

func (h *AuditLogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /audit-logs", h.GetEntityLogs)
}
