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

const tweetSelect = `
	SELECT t.id, t.content, t.created_at, t.updated_at, t.user_id,
	       u.id, u.email, u.first_name, u.last_name, u.password, u.country, u.birth_date, u.creation_account_date
	FROM tweets t
	JOIN users u ON u.id = t.user_id`

var tweetUpdatableFields = map[string]struct{}{
	domain.TweetFieldContent:   {},
	domain.TweetFieldUpdatedAt: {},
}

type TweetRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewTweetRepository(db *sql.DB, logger logger.Logger) domain.TweetRepository {
	return &TweetRepository{
		db:     db,
		logger: logger,
	}
}

func scanTweet(row rowScanner) (*domain.Tweet, error) {
	var (
		tweet     domain.Tweet
		updatedAt sql.NullTime
		author    userRow
	)

	dest := append([]any{
		&tweet.ID,
		&tweet.Content,
		&tweet.CreatedAt,
		&updatedAt,
		&tweet.UserID,
	}, author.dest()...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	tweet.CreatedAt = tweet.CreatedAt.UTC()
	if updatedAt.Valid {
		t := updatedAt.Time.UTC()
		tweet.UpdatedAt = &t
	}
	tweet.By = author.toUser()

	return &tweet, nil
}

func findTweet(ctx context.Context, q database.DBTX, id string) (*domain.Tweet, error) {
	tweet, err := scanTweet(q.QueryRowContext(ctx, tweetSelect+` WHERE t.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTweetNotFound
	}
	return tweet, err
}

func (r *TweetRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Tweet, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tweets := make([]*domain.Tweet, 0)
	for rows.Next() {
		tweet, err := scanTweet(rows)
		if err != nil {
			return nil, err
		}
		tweets = append(tweets, tweet)
	}

	return tweets, rows.Err()
}

func (r *TweetRepository) FindByID(ctx context.Context, id string) (tweet *domain.Tweet, err error) {
	defer func(start time.Time) { observe("find_by_id", "tweet", start, err) }(time.Now())

	tweet, err = findTweet(ctx, r.db, id)
	if err != nil && !errors.Is(err, domain.ErrTweetNotFound) {
		r.logger.ErrorContext(ctx, "Failed to find tweet by id", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("find tweet %s: %w", id, err)
	}
	return tweet, err
}

func (r *TweetRepository) FindAll(ctx context.Context) (tweets []*domain.Tweet, err error) {
	defer func(start time.Time) { observe("find_all", "tweet", start, err) }(time.Now())

	tweets, err = r.query(ctx, tweetSelect+` ORDER BY t.created_at, t.id`)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list tweets", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("list tweets: %w", err)
	}
	return tweets, nil
}

func (r *TweetRepository) FindByUserID(ctx context.Context, userID string) (tweets []*domain.Tweet, err error) {
	defer func(start time.Time) { observe("find_by_user_id", "tweet", start, err) }(time.Now())

	tweets, err = r.query(ctx, tweetSelect+` WHERE t.user_id = $1 ORDER BY t.created_at, t.id`, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list tweets of user", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return nil, fmt.Errorf("list tweets of user %s: %w", userID, err)
	}
	return tweets, nil
}

// Create inserts the tweet. The author must already exist.
func (r *TweetRepository) Create(ctx context.Context, tweet *domain.Tweet) (err error) {
	defer func(start time.Time) { observe("create", "tweet", start, err) }(time.Now())

	query := `
		INSERT INTO tweets (id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.db.ExecContext(ctx, query,
		tweet.ID,
		tweet.UserID,
		tweet.Content,
		dbValue(tweet.CreatedAt),
		dbValue(tweet.UpdatedAt),
	)
	if err != nil {
		mapped := mapTweetWriteError(err)
		if mapped == err {
			r.logger.ErrorContext(ctx, "Failed to create tweet", map[string]interface{}{"id": tweet.ID, "error": err.Error()})
		}
		return fmt.Errorf("create tweet: %w", mapped)
	}

	return nil
}

func (r *TweetRepository) Update(ctx context.Context, id string, fields domain.Fields) (tweet *domain.Tweet, err error) {
	defer func(start time.Time) { observe("update", "tweet", start, err) }(time.Now())

	if len(fields) == 0 {
		return findTweet(ctx, r.db, id)
	}

	keys := fields.Keys()
	set := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for _, k := range keys {
		if _, ok := tweetUpdatableFields[k]; !ok {
			return nil, fmt.Errorf("update tweet: %w: %s", domain.ErrUnknownField, k)
		}
		args = append(args, dbValue(fields[k]))
		set = append(set, fmt.Sprintf("%s = $%d", k, len(args)))
	}
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE tweets SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))

	err = database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return domain.ErrTweetNotFound
		}

		tweet, err = findTweet(ctx, tx, id)
		return err
	})
	if err != nil {
		if !isDomainError(err) {
			r.logger.ErrorContext(ctx, "Failed to update tweet", map[string]interface{}{"id": id, "error": err.Error()})
		}
		return nil, fmt.Errorf("update tweet %s: %w", id, err)
	}

	return tweet, nil
}

func (r *TweetRepository) Delete(ctx context.Context, id string) (tweet *domain.Tweet, err error) {
	defer func(start time.Time) { observe("delete", "tweet", start, err) }(time.Now())

	err = database.WithTx(ctx, r.db, nil, func(ctx context.Context, tx database.DBTX) error {
		tweet, err = findTweet(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM tweets WHERE id = $1`, id)
		return err
	})
	if err != nil {
		if !isDomainError(err) {
			r.logger.ErrorContext(ctx, "Failed to delete tweet", map[string]interface{}{"id": id, "error": err.Error()})
		}
		return nil, fmt.Errorf("delete tweet %s: %w", id, err)
	}

	return tweet, nil
}
