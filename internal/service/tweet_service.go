package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"twitterapi/internal/domain"
	"twitterapi/internal/validation"
	"twitterapi/pkg/logger"
	"twitterapi/pkg/metrics"
	"twitterapi/pkg/tracing"
)

type TweetService struct {
	repo      domain.TweetRepository
	users     domain.UserRepository
	auditLog  domain.AuditLogService
	validator *validation.Validator
	logger    logger.Logger
	now       func() time.Time
}

func NewTweetService(
	repo domain.TweetRepository,
	users domain.UserRepository,
	auditLog domain.AuditLogService,
	validator *validation.Validator,
	logger logger.Logger,
) *TweetService {
	return &TweetService{
		repo:      repo,
		users:     users,
		auditLog:  auditLog,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for created_at and updated_at.
func (s *TweetService) WithClock(now func() time.Time) *TweetService {
	s.now = now
	return s
}

func (s *TweetService) CreateTweet(ctx context.Context, req *domain.NewTweet) (*domain.Tweet, error) {
	ctx, span := tracing.StartSpan(ctx, "TweetService.CreateTweet")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	author, err := s.users.FindByID(ctx, req.By)
	if err != nil {
		return nil, err
	}

	tweet := &domain.Tweet{
		ID:        uuid.NewString(),
		Content:   req.Content,
		CreatedAt: s.now().UTC(),
		UserID:    author.ID,
		By:        author,
	}

	if err := s.repo.Create(ctx, tweet); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		tracing.RecordError(span, err)
		s.logger.ErrorContext(ctx, "Failed to create tweet", map[string]interface{}{"user_id": author.ID, "error": err.Error()})
		return nil, fmt.Errorf("create tweet: %w", err)
	}

	metrics.RecordMutation("tweet", "create")
	audit(ctx, s.auditLog, domain.EntityTypeTweet, tweet.ID, domain.ActionTypeCreate, fmt.Sprintf("Tweet posted by %s", author.ID))

	return tweet, nil
}

func (s *TweetService) GetTweets(ctx context.Context) ([]*domain.Tweet, error) {
	tweets, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list tweets", map[string]interface{}{"error": err.Error()})
		return nil, fmt.Errorf("list tweets: %w", err)
	}
	return tweets, nil
}

func (s *TweetService) GetTweetByID(ctx context.Context, id string) (*domain.Tweet, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TweetService) GetTweetsByUser(ctx context.Context, userID string) ([]*domain.Tweet, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	tweets, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list tweets of user", map[string]interface{}{"user_id": userID, "error": err.Error()})
		return nil, fmt.Errorf("list tweets of user: %w", err)
	}
	return tweets, nil
}

// UpdateTweet overwrites the content. Identifier, author and created_at are kept.
func (s *TweetService) UpdateTweet(ctx context.Context, id string, req *domain.UpdateTweet) (*domain.Tweet, error) {
	ctx, span := tracing.StartSpan(ctx, "TweetService.UpdateTweet")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updatedAt := s.now().UTC()
	// updated_at never moves backwards, even if the clock does
	if existing.UpdatedAt != nil && updatedAt.Before(*existing.UpdatedAt) {
		updatedAt = *existing.UpdatedAt
	}
	if updatedAt.Before(existing.CreatedAt) {
		updatedAt = existing.CreatedAt
	}

	tweet, err := s.repo.Update(ctx, id, domain.Fields{
		domain.TweetFieldContent:   req.Content,
		domain.TweetFieldUpdatedAt: updatedAt,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTweetNotFound) {
			return nil, err
		}
		tracing.RecordError(span, err)
		s.logger.ErrorContext(ctx, "Failed to update tweet", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("update tweet: %w", err)
	}

	metrics.RecordMutation("tweet", "update")
	audit(ctx, s.auditLog, domain.EntityTypeTweet, id, domain.ActionTypeUpdate, "Tweet content updated")

	return tweet, nil
}

func (s *TweetService) DeleteTweet(ctx context.Context, id string) (*domain.TweetDeleted, error) {
	ctx, span := tracing.StartSpan(ctx, "TweetService.DeleteTweet")
	defer span.End()

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, err
	}

	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTweetNotFound) {
			return nil, err
		}
		tracing.RecordError(span, err)
		s.logger.ErrorContext(ctx, "Failed to delete tweet", map[string]interface{}{"id": id, "error": err.Error()})
		return nil, fmt.Errorf("delete tweet: %w", err)
	}

	metrics.RecordMutation("tweet", "delete")
	audit(ctx, s.auditLog, domain.EntityTypeTweet, id, domain.ActionTypeDelete, "Tweet deleted")

	return &domain.TweetDeleted{
		TweetID:       removed.ID,
		DeleteMessage: fmt.Sprintf("Tweet written by %s has been deleted successfully!", removed.By.FirstName),
	}, nil
}

// ImportTweet stores a legacy tweet with its original identifier and timestamps.
// It reports false when the tweet already exists.
func (s *TweetService) ImportTweet(ctx context.Context, tweet *domain.Tweet) (bool, error) {
	if tweet.ID == "" {
		tweet.ID = uuid.NewString()
	}
	if err := validation.ValidateID("tweet_id", tweet.ID); err != nil {
		return false, err
	}
	if err := s.validator.Struct(&domain.NewTweet{Content: tweet.Content, By: tweet.UserID}); err != nil {
		return false, err
	}

	if _, err := s.repo.FindByID(ctx, tweet.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrTweetNotFound) {
		return false, err
	}

	author, err := s.users.FindByID(ctx, tweet.UserID)
	if err != nil {
		return false, err
	}
	tweet.By = author

	if tweet.CreatedAt.IsZero() {
		tweet.CreatedAt = s.now().UTC()
	}

	if err := s.repo.Create(ctx, tweet); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("import tweet: %w", err)
	}

	metrics.RecordMutation("tweet", "import")
	audit(ctx, s.auditLog, domain.EntityTypeTweet, tweet.ID, domain.ActionTypeImport, "Tweet imported")

	return true, nil
}
