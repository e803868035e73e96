package domain

import (
	"context"
	"time"
)

type Tweet struct {
	ID        string     `json:"tweet_id"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
	UserID    string     `json:"-"`
	By        *User      `json:"by"`
}

type NewTweet struct {
	Content string `json:"content" validate:"max=280"`
	By      string `json:"by" validate:"required,len=36"`
}

type UpdateTweet struct {
	Content string `json:"content" validate:"max=280"`
}

type TweetDeleted struct {
	TweetID       string `json:"tweet_id"`
	DeleteMessage string `json:"delete_message"`
}

type TweetRepository interface {
	FindByID(ctx context.Context, id string) (*Tweet, error)
	FindAll(ctx context.Context) ([]*Tweet, error)
	FindByUserID(ctx context.Context, userID string) ([]*Tweet, error)
	Create(ctx context.Context, tweet *Tweet) error
	Update(ctx context.Context, id string, fields Fields) (*Tweet, error)
	Delete(ctx context.Context, id string) (*Tweet, error)
}

type TweetService interface {
	CreateTweet(ctx context.Context, req *NewTweet) (*Tweet, error)
	GetTweets(ctx context.Context) ([]*Tweet, error)
	GetTweetByID(ctx context.Context, id string) (*Tweet, error)
	GetTweetsByUser(ctx context.Context, userID string) ([]*Tweet, error)
	UpdateTweet(ctx context.Context, id string, req *UpdateTweet) (*Tweet, error)
	DeleteTweet(ctx context.Context, id string) (*TweetDeleted, error)
	ImportTweet(ctx context.Context, tweet *Tweet) (bool, error)
}
