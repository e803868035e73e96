package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"twitterapi/internal/domain"
	"twitterapi/pkg/metrics"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}
	return false
}

// mapUserWriteError turns constraint violations on the users table into domain errors.
func mapUserWriteError(err error) error {
	if !isUniqueViolation(err) {
		return err
	}
	if strings.Contains(violatedConstraint(err), "email") {
		return domain.ErrEmailAlreadyRegistered
	}
	return domain.ErrAlreadyExists
}

// violatedConstraint names the failed constraint: the constraint name on
// postgres ("users_email_key"), the message on sqlite
// ("UNIQUE constraint failed: users.email").
func violatedConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Constraint != "" {
		return pqErr.Constraint
	}
	return err.Error()
}

func mapTweetWriteError(err error) error {
	switch {
	case isForeignKeyViolation(err):
		return domain.ErrUserNotFound
	case isUniqueViolation(err):
		return domain.ErrAlreadyExists
	default:
		return err
	}
}

// observe records one repository call in the database metrics.
func observe(operation, entity string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrTweetNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.RecordDatabaseOperation(operation, entity, outcome, time.Since(start))
}

// dbValue converts domain field values into driver values.
func dbValue(v any) any {
	switch x := v.(type) {
	case domain.Date:
		return x.Time
	case *domain.Date:
		if x == nil {
			return nil
		}
		return x.Time
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case time.Time:
		return x.UTC()
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC()
	default:
		return v
	}
}

func isDomainError(err error) bool {
	return errors.Is(err, domain.ErrUserNotFound) ||
		errors.Is(err, domain.ErrTweetNotFound) ||
		errors.Is(err, domain.ErrEmailAlreadyRegistered) ||
		errors.Is(err, domain.ErrAlreadyExists) ||
		errors.Is(err, domain.ErrUnknownField)
}
