package domain

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrTweetNotFound          = errors.New("tweet not found")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrAlreadyExists          = errors.New("record already exists")
	ErrUnknownField           = errors.New("unknown field")
)
