package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"twitterapi/internal/database"
	"twitterapi/internal/domain"
	"twitterapi/pkg/logger"
)

const userColumns = `id, email, first_name, last_name, password, country, birth_date, creation_account_date`

var userUpdatableFields = map[string]struct{}{
	domain.UserFieldEmail:               {},
	domain.UserFieldFirstName:           {},
	domain.UserFieldLastName:            {},
	domain.UserFieldPassword:            {},
	domain.UserFieldCountry:             {},
	domain.UserFieldBirthDate:           {},
	domain.UserFieldCreationAccountDate: {},
}

type UserRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewUserRepository(db *sql.DB, logger logger.Logger) domain.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// userRow holds the nullable scan targets of a users row.
type userRow struct {
	user     domain.User
	country  sql.NullString
	birth    sql.NullTime
	creation time.Time
}

func (r *userRow) dest() []any {
	return []any{
		&r.user.ID,
		&r.user.Email,
		&r.user.FirstName,
		&r.user.LastName,
		&r.user.Password,
		&r.country,
		&r.birth,
		&r.creation,
	}
}

func (r *userRow) toUser() *domain.User {
	user := r.user
	if r.country.Valid {
		country := r.country.String
		user.Country = &country
	}
	if r.birth.Valid {
		d := domain.DateOf(r.birth.Time)
		user.BirthDate = &d
	}
	user.CreationAccountDate = domain.DateOf(r.creation)
	return &user
}

func scanUser(row rowScanner) (*domain.User, error) {
	var r userRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.toUser(), nil
}

func findUser(ctx context.Context, q database.DBTX, column string, value any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	user, err := scanUser(q.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	return user, err
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (user *domain.User, err error) {
	defer func(start time.Time) { observe("find_by_id", "user", start, err) }(time.Now())

	user, err = findUser(ctx, r.db, "id", id)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		r.logger.ErrorContext(ctx, "Failed to find user by id", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return user, err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (user *domain.User, err error) {
	defer func(start time.Time) { observe("find_by_email", "user", start, err) }(time.Now())

	user, err = findUser(ctx, r.db, "email", email)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		r.logger.ErrorContext(ctx, "Failed to find user by email", map[string]interface{}{"email": email, "error": err.Error()})
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, err
}

func (r *UserRepository) FindAll(ctx context.Context) (users []*domain.User, err error) {
	defer func(start time.Time) { observe("find_all", "user", start, err) }(time.Now())

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list users", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users = make([]*domain.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan user row", map[string]interface{}{"error": err.Error()})
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (err error) {
	defer func(start time.Time) { observe("create", "user", start, err) }(time.Now())

	query := `
		INSERT INTO users (id, email, first_name, last_name, password, country, birth_date, creation_account_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now().UTC()

	_, err = r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Password,
		dbValue(user.Country),
		dbValue(user.BirthDate),
		dbValue(user.CreationAccountDate),
		now,
		now,
	)
	if err != nil {
		mapped := mapUserWriteError(err)
		if mapped == err {
			r.logger.ErrorContext(ctx, "Failed to create user", map[string]interface{}{"id": user.ID, "error": err.Error()})
		}
		return fmt.Errorf("create user: %w", mapped)
	}

	return nil
}

// Update merges fields into the user row and returns the refreshed record.
func (r *UserRepository) Update(ctx context.Context, id string, fields domain.Fields) (user *domain.User, err error) {
	defer func(start time.Time) { observe("update", "user", start, err) }(time.Now())

	keys := fields.Keys()
	set := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+2)
	for _, k := range keys {
		if _, ok := userUpdatableFields[k]; !ok {
			return nil, fmt.Errorf("update user: %w: %s", domain.ErrUnknownField, k)
		}
		args = append(args, dbValue(fields[k]))
		set = append(set, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	args = append(args, time.Now().UTC())
	set = append(set, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))

	err = database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return mapUserWriteError(err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return domain.ErrUserNotFound
		}

		user, err = findUser(ctx, tx, "id", id)
		return err
	})
	if err != nil {
		if !isDomainError(err) {
			r.logger.ErrorContext(ctx, "Failed to update user", map[string]interface{}{"id": id, "error": err.Error()})
		}
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}

	return user, nil
}

// Delete removes the user (and, through the foreign key, their tweets) and returns the removed record.
func (r *UserRepository) Delete(ctx context.Context, id string) (user *domain.User, err error) {
	defer func(start time.Time) { observe("delete", "user", start, err) }(time.Now())

	err = database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		user, err = findUser(ctx, tx, "id", id)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
	if err != nil {
		if !isDomainError(err) {
			r.logger.ErrorContext(ctx, "Failed to delete user", map[string]interface{}{"id": id, "error": err.Error()})
		}
		return nil, fmt.Errorf("delete user %s: %w", id, err)
	}

	return user, nil
}
