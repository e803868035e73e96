package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"twitterapi/internal/domain"
)

func TestMapUserWriteError_Postgres(t *testing.T) {
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "duplicate email",
			err: &pq.Error{
				Code:       pqUniqueViolation,
				Constraint: "users_email_key",
				Message:    `duplicate key value violates unique constraint "users_email_key"`,
			},
			want: domain.ErrEmailAlreadyRegistered,
		},
		{
			name: "duplicate primary key",
			err: &pq.Error{
				Code:       pqUniqueViolation,
				Constraint: "users_pkey",
				Message:    `duplicate key value violates unique constraint "users_pkey"`,
			},
			want: domain.ErrAlreadyExists,
		},
		{
			name: "constraint name wins over message text",
			err: &pq.Error{
				Code:       pqUniqueViolation,
				Constraint: "users_pkey",
				Detail:     "Key (id)=(x) already exists.",
				Message:    `duplicate key for user with email a@b.c`,
			},
			want: domain.ErrAlreadyExists,
		},
		{
			name: "wrapped duplicate email",
			err: fmt.Errorf("insert user: %w", &pq.Error{
				Code:       pqUniqueViolation,
				Constraint: "users_email_key",
			}),
			want: domain.ErrEmailAlreadyRegistered,
		},
		{
			name: "other postgres error",
			err:  &pq.Error{Code: "42P01", Message: `relation "users" does not exist`},
		},
		{
			name: "non-driver error",
			err:  plain,
			want: plain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapUserWriteError(tt.err)
			if tt.want == nil {
				assert.Same(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestMapTweetWriteError_Postgres(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "unknown author",
			err: &pq.Error{
				Code:       pqForeignKeyViolation,
				Constraint: "tweets_user_id_fkey",
				Message:    `insert or update on table "tweets" violates foreign key constraint "tweets_user_id_fkey"`,
			},
			want: domain.ErrUserNotFound,
		},
		{
			name: "duplicate primary key",
			err: &pq.Error{
				Code:       pqUniqueViolation,
				Constraint: "tweets_pkey",
			},
			want: domain.ErrAlreadyExists,
		},
		{
			name: "wrapped unknown author",
			err:  fmt.Errorf("insert tweet: %w", &pq.Error{Code: pqForeignKeyViolation}),
			want: domain.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapTweetWriteError(tt.err), tt.want)
		})
	}

	other := &pq.Error{Code: "57014", Message: "canceling statement due to statement timeout"}
	assert.Same(t, error(other), mapTweetWriteError(other))
}
