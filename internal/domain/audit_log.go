package domain

import (
	"context"
	"time"
)

type EntityType string
type ActionType string

const (
	EntityTypeUser  EntityType = "user"
	EntityTypeTweet EntityType = "tweet"

	ActionTypeCreate ActionType = "create"
	ActionTypeUpdate ActionType = "update"
	ActionTypeDelete ActionType = "delete"
	ActionTypeImport ActionType = "import"
)

func (e EntityType) Valid() bool {
	return e == EntityTypeUser || e == EntityTypeTweet
}

type AuditLog struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Action     ActionType `json:"action"`
	Details    string     `json:"details,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type AuditLogRepository interface {
	Create(ctx context.Context, log *AuditLog) error
	FindByEntityID(ctx context.Context, entityType EntityType, entityID string) ([]*AuditLog, error)
}

type AuditLogService interface {
	LogAction(ctx context.Context, entityType EntityType, entityID string, action ActionType, details string) error
	GetEntityLogs(ctx context.Context, entityType EntityType, entityID string) ([]*AuditLog, error)
}
