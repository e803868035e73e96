package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twitterapi/internal/domain"
	"twitterapi/internal/validation"
)

func TestUserService_CreateUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.userSvc.CreateUser(ctx, registerReq("a@example.com"))
	require.NoError(t, err)
	assert.Len(t, user.ID, 36)
	assert.Equal(t, "a@example.com", user.Email)

	got, err := f.userSvc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)

	other, err := f.userSvc.CreateUser(ctx, registerReq("b@example.com"))
	require.NoError(t, err)
	assert.NotEqual(t, user.ID, other.ID)

	assert.Equal(t, []domain.ActionType{domain.ActionTypeCreate, domain.ActionTypeCreate}, f.audits.actions())
}

func TestUserService_CreateUserDuplicateEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.userSvc.CreateUser(ctx, registerReq("a@example.com"))
	require.NoError(t, err)

	_, err = f.userSvc.CreateUser(ctx, registerReq("a@example.com"))
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyRegistered)
	assert.Equal(t, 1, f.users.count())
}

func TestUserService_CreateUserValidationTouchesNoStore(t *testing.T) {
	f := newFixture()

	req := registerReq("not-an-email")
	req.Password = "short"
	_, err := f.userSvc.CreateUser(context.Background(), req)

	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)
	assert.Empty(t, f.users.calls)
}

func TestUserService_CreateUserStoreError(t *testing.T) {
	f := newFixture()
	f.users.failOn = "Create"

	_, err := f.userSvc.CreateUser(context.Background(), registerReq("a@example.com"))
	assert.ErrorIs(t, err, errStore)
	assert.Empty(t, f.audits.actions())
}

func TestUserService_AuditFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture()
	f.audits.fail = true

	user, err := f.userSvc.CreateUser(context.Background(), registerReq("a@example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
}

func TestUserService_GetUsers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	users, err := f.userSvc.GetUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	for _, e := range []string{"a@example.com", "b@example.com"} {
		_, err := f.userSvc.CreateUser(ctx, registerReq(e))
		require.NoError(t, err)
	}

	users, err = f.userSvc.GetUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserService_UpdateUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.userSvc.CreateUser(ctx, registerReq("a@example.com"))
	require.NoError(t, err)

	req := registerReq("new@example.com")
	req.FirstName = "Beatriz"
	req.Country = nil
	req.BirthDate = nil

	updated, err := f.userSvc.UpdateUser(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, "Beatriz", updated.FirstName)
	assert.Nil(t, updated.Country)
	assert.Nil(t, updated.BirthDate)
}

func TestUserService_UpdateUserKeepsOwnEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.userSvc.CreateUser(ctx, registerReq("a@example.com"))
	require.NoError(t, err)

	req := registerReq("a@example.com")
	req.LastName = "Diaz"
	updated, err := f.userSvc.UpdateUser(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, "Diaz", updated.LastName)
}

func TestUserService_UpdateUserEmailTaken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.userSvc.CreateUser(ctx, registerReq("taken@example.com"))
	require.NoError(t, err)
	user, err := f.userSvc.CreateUser(ctx, registerReq("mine@example.com"))
	require.NoError(t, err)

	_, err = f.userSvc.UpdateUser(ctx, user.ID, registerReq("taken@example.com"))
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyRegistered)

	got, err := f.userSvc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine@example.com", got.Email)
}

func TestUserService_NotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	missing := "00000000-0000-0000-0000-000000000000"

	_, err := f.userSvc.GetUserByID(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.userSvc.UpdateUser(ctx, missing, registerReq("a@example.com"))
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.userSvc.DeleteUser(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.NotContains(t, f.users.calls, "Update")
	assert.NotContains(t, f.users.calls, "Delete")
	assert.Empty(t, f.audits.actions())
}

func TestUserService_DeleteUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, err := f.userSvc.CreateUser(ctx, registerReq("a@example.com"))
	require.NoError(t, err)

	res, err := f.userSvc.DeleteUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, &domain.UserDeleted{
		UserID:        user.ID,
		Email:         "a@example.com",
		DeleteMessage: "Ana has been deleted successfully!",
	}, res)

	_, err = f.userSvc.DeleteUser(ctx, user.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserService_ImportUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	legacy := &domain.User{
		ID:                  "3f2b8a4e-1c2d-4e5f-8a9b-0c1d2e3f4a5b",
		Email:               "legacy@example.com",
		FirstName:           "Leo",
		LastName:            "Gomez",
		Password:            "oldpassword",
		CreationAccountDate: domain.NewDate(2019, time.May, 5),
	}

	created, err := f.userSvc.ImportUser(ctx, legacy)
	require.NoError(t, err)
	assert.True(t, created)

	got, err := f.userSvc.GetUserByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, "legacy@example.com", got.Email)

	created, err = f.userSvc.ImportUser(ctx, legacy)
	require.NoError(t, err)
	assert.False(t, created)

	sameEmail := *legacy
	sameEmail.ID = "4f2b8a4e-1c2d-4e5f-8a9b-0c1d2e3f4a5b"
	created, err = f.userSvc.ImportUser(ctx, &sameEmail)
	require.NoError(t, err)
	assert.False(t, created)

	bad := *legacy
	bad.ID = "short"
	_, err = f.userSvc.ImportUser(ctx, &bad)
	var verr *validation.Error
	assert.True(t, errors.As(err, &verr))

	assert.Equal(t, 1, f.users.count())
}
