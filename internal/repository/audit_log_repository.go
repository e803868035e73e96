package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"twitterapi/internal/domain"
	"twitterapi/pkg/logger"
)

type AuditLogRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewAuditLogRepository(db *sql.DB, logger logger.Logger) domain.AuditLogRepository {
	return &AuditLogRepository{
		db:     db,
		logger: logger,
	}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *domain.AuditLog) (err error) {
	defer func(start time.Time) { observe("create", "audit_log", start, err) }(time.Now())

	query := `
		INSERT INTO audit_logs (id, entity_type, entity_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	_, err = r.db.ExecContext(ctx, query,
		log.ID,
		string(log.EntityType),
		log.EntityID,
		string(log.Action),
		log.Details,
		log.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to create audit log", map[string]interface{}{"error": err.Error()})
		return fmt.Errorf("create audit log: %w", err)
	}

	return nil
}

// FindByEntityID returns the entity's audit trail, newest first.
func (r *AuditLogRepository) FindByEntityID(ctx context.Context, entityType domain.EntityType, entityID string) (logs []*domain.AuditLog, err error) {
	defer func(start time.Time) { observe("find_by_entity_id", "audit_log", start, err) }(time.Now())

	query := `
		SELECT id, entity_type, entity_id, action, details, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, string(entityType), entityID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to find audit logs", map[string]interface{}{
			"entity_type": entityType,
			"entity_id":   entityID,
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("find audit logs: %w", err)
	}
	defer rows.Close()

	logs = make([]*domain.AuditLog, 0)
	for rows.Next() {
		var (
			log                      domain.AuditLog
			entityTypeStr, actionStr string
			details                  sql.NullString
		)

		err := rows.Scan(
			&log.ID,
			&entityTypeStr,
			&log.EntityID,
			&actionStr,
			&details,
			&log.CreatedAt,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan audit log row", map[string]interface{}{"error": err.Error()})
			return nil, fmt.Errorf("scan audit log: %w", err)
		}

		log.EntityType = domain.EntityType(entityTypeStr)
		log.Action = domain.ActionType(actionStr)
		log.Details = details.String
		log.CreatedAt = log.CreatedAt.UTC()

		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit logs: %w", err)
	}

	return logs, nil
}
