package service

import (
	"context"
	"fmt"
	"time"

	"twitterapi/internal/domain"
	"twitterapi/pkg/logger"
)

type AuditLogService struct {
	repo   domain.AuditLogRepository
	logger logger.Logger
}

func NewAuditLogService(repo domain.AuditLogRepository, logger logger.Logger) domain.AuditLogService {
	return &AuditLogService{
		repo:   repo,
		logger: logger,
	}
}

func (s *AuditLogService) LogAction(ctx context.Context, entityType domain.EntityType, entityID string, action domain.ActionType, details string) error {
	auditLog := &domain.AuditLog{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, auditLog); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write audit log", map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
			"action":      action,
			"error":       err.Error(),
		})
		return fmt.Errorf("write audit log: %w", err)
	}

	return nil
}

func (s *AuditLogService) GetEntityLogs(ctx context.Context, entityType domain.EntityType, entityID string) ([]*domain.AuditLog, error) {
	logs, err := s.repo.FindByEntityID(ctx, entityType, entityID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read audit logs", map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("read audit logs: %w", err)
	}

	return logs, nil
}

// audit records a mutation. Failures are already logged by LogAction and never
// fail the mutation itself.
func audit(ctx context.Context, svc domain.AuditLogService, entityType domain.EntityType, entityID string, action domain.ActionType, details string) {
	if svc == nil {
		return
	}
	_ = svc.LogAction(ctx, entityType, entityID, action, details)
}
