package db

import "errors"

// Domain-level database error sentinels.
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")

	// State errors
	ErrUnknownState      = errors.New("state code not found")
	ErrUserStateNotFound = errors.New("state not found for user")
)
