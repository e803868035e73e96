package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitterapi/internal/domain"
	"twitterapi/pkg/logger"
)

func TestAuditLogService(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditLogService(repo, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.LogAction(ctx, domain.EntityTypeTweet, "t1", domain.ActionTypeCreate, "posted"))
	require.NoError(t, svc.LogAction(ctx, domain.EntityTypeTweet, "t1", domain.ActionTypeUpdate, ""))
	require.NoError(t, svc.LogAction(ctx, domain.EntityTypeUser, "u1", domain.ActionTypeCreate, ""))

	logs, err := svc.GetEntityLogs(ctx, domain.EntityTypeTweet, "t1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.ActionTypeUpdate, logs[0].Action)
	assert.False(t, logs[0].CreatedAt.IsZero())

	repo.fail = true
	assert.ErrorIs(t, svc.LogAction(ctx, domain.EntityTypeUser, "u1", domain.ActionTypeDelete, ""), errStore)
	_, err = svc.GetEntityLogs(ctx, domain.EntityTypeUser, "u1")
	assert.ErrorIs(t, err, errStore)
}
