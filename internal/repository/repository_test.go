package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"twitterapi/internal/database"
	"twitterapi/internal/domain"
	"twitterapi/pkg/logger"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrationService(db, logger.NewNop()).RunMigrations(context.Background()))
	return db
}

func newUser(email string) *domain.User {
	country := "Mexico"
	birth := domain.NewDate(1994, time.August, 12)
	return &domain.User{
		ID:                  uuid.NewString(),
		Email:               email,
		FirstName:           "Ana",
		LastName:            "Lopez",
		Password:            "supersecret",
		Country:             &country,
		BirthDate:           &birth,
		CreationAccountDate: domain.NewDate(2021, time.February, 3),
	}
}

func newTweet(userID, content string, createdAt time.Time) *domain.Tweet {
	return &domain.Tweet{
		ID:        uuid.NewString(),
		UserID:    userID,
		Content:   content,
		CreatedAt: createdAt,
	}
}
