package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"twitterapi/internal/concurrent"
	"twitterapi/internal/domain"
	"twitterapi/pkg/logger"
)

// Report counts the outcome of one import run.
type Report struct {
	UsersImported  int `json:"users_imported"`
	UsersSkipped   int `json:"users_skipped"`
	TweetsImported int `json:"tweets_imported"`
	TweetsSkipped  int `json:"tweets_skipped"`
	Failed         int `json:"failed"`
}

type legacyUser struct {
	UserID              string       `json:"user_id"`
	Email               string       `json:"email"`
	FirstName           string       `json:"first_name"`
	LastName            string       `json:"last_name"`
	Password            string       `json:"password"`
	Country             *string      `json:"country"`
	BirthDate           *domain.Date `json:"birth_date"`
	CreationAccountDate domain.Date  `json:"creation_account_date"`
}

type legacyTweet struct {
	TweetID   string      `json:"tweet_id"`
	Content   string      `json:"content"`
	CreatedAt legacyTime  `json:"created_at"`
	UpdatedAt legacyTime  `json:"updated_at"`
	By        *legacyUser `json:"by"`
}

// legacyTime accepts RFC 3339 and the "YYYY-MM-DD HH:MM:SS[.ffffff]" form of
// the file-backed store. Timestamps without a zone are taken as UTC.
type legacyTime struct {
	time.Time
}

var legacyTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
}

func (t *legacyTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range legacyTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

type Importer struct {
	users   domain.UserService
	tweets  domain.TweetService
	workers int
	logger  logger.Logger

	mu     sync.Mutex
	report *Report
}

// New returns an Importer that processes records with the given number of
// concurrent workers.
func New(users domain.UserService, tweets domain.TweetService, workers int, logger logger.Logger) *Importer {
	return &Importer{
		users:   users,
		tweets:  tweets,
		workers: workers,
		logger:  logger,
	}
}

// Run imports usersPath and then tweetsPath. Either path may be empty.
// Records that already exist are skipped; invalid records are counted as
// failed and do not stop the run.
func (i *Importer) Run(ctx context.Context, usersPath, tweetsPath string) (*Report, error) {
	i.mu.Lock()
	i.report = &Report{}
	i.mu.Unlock()

	if usersPath != "" {
		var users []legacyUser
		if err := readJSON(usersPath, &users); err != nil {
			return i.snapshot(), err
		}
		runPool(ctx, "import-users", i.workers, users, i.importUser, i.logger)
	}

	if tweetsPath != "" {
		var tweets []legacyTweet
		if err := readJSON(tweetsPath, &tweets); err != nil {
			return i.snapshot(), err
		}
		runPool(ctx, "import-tweets", i.workers, tweets, i.importTweet, i.logger)
	}

	report := i.snapshot()
	i.logger.InfoContext(ctx, "Legacy import finished", map[string]interface{}{
		"users_imported":  report.UsersImported,
		"users_skipped":   report.UsersSkipped,
		"tweets_imported": report.TweetsImported,
		"tweets_skipped":  report.TweetsSkipped,
		"failed":          report.Failed,
	})

	return report, ctx.Err()
}

// runPool feeds every item to fn and returns once all of them are handled.
func runPool[T any](ctx context.Context, name string, workers int, items []T, fn concurrent.Processor[T], log logger.Logger) {
	pool := concurrent.NewWorkerPool(ctx, name, workers, workers*2, fn, log)
	pool.Start()
	for _, item := range items {
		if !pool.Submit(item) {
			break
		}
	}
	pool.Wait()
}

func (i *Importer) importUser(ctx context.Context, lu legacyUser) error {
	imported, err := i.users.ImportUser(ctx, lu.toUser())

	i.mu.Lock()
	switch {
	case err != nil:
		i.report.Failed++
	case imported:
		i.report.UsersImported++
	default:
		i.report.UsersSkipped++
	}
	i.mu.Unlock()

	if err != nil {
		i.logger.WarnContext(ctx, "Skipping invalid legacy user", map[string]interface{}{
			"user_id": lu.UserID,
			"error":   err.Error(),
		})
	}
	return err
}

func (i *Importer) importTweet(ctx context.Context, lt legacyTweet) error {
	tweet, err := lt.toTweet()
	imported := false
	if err == nil {
		imported, err = i.tweets.ImportTweet(ctx, tweet)
	}

	i.mu.Lock()
	switch {
	case err != nil:
		i.report.Failed++
	case imported:
		i.report.TweetsImported++
	default:
		i.report.TweetsSkipped++
	}
	i.mu.Unlock()

	if err != nil {
		i.logger.WarnContext(ctx, "Skipping invalid legacy tweet", map[string]interface{}{
			"tweet_id": lt.TweetID,
			"error":    err.Error(),
		})
	}
	return err
}

func (i *Importer) snapshot() *Report {
	i.mu.Lock()
	defer i.mu.Unlock()
	r := *i.report
	return &r
}

func (u legacyUser) toUser() *domain.User {
	return &domain.User{
		ID:                  u.UserID,
		Email:               u.Email,
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Password:            u.Password,
		Country:             u.Country,
		BirthDate:           u.BirthDate,
		CreationAccountDate: u.CreationAccountDate,
	}
}

var errMissingAuthor = errors.New("tweet has no author")

func (t legacyTweet) toTweet() (*domain.Tweet, error) {
	if t.By == nil || t.By.UserID == "" {
		return nil, errMissingAuthor
	}

	tweet := &domain.Tweet{
		ID:        t.TweetID,
		Content:   t.Content,
		CreatedAt: t.CreatedAt.Time,
		UserID:    t.By.UserID,
	}
	// the file store stamped updated_at on creation; only a later value is an edit
	if !t.UpdatedAt.IsZero() && t.UpdatedAt.After(t.CreatedAt.Time) {
		updated := t.UpdatedAt.Time
		tweet.UpdatedAt = &updated
	}
	return tweet, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
