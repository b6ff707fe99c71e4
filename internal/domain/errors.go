package domain

import "errors"

// Validation errors returned by entity Validate methods.
var (
	ErrEmptyTitle    = errors.New("page title must not be empty")
	ErrEmptyUsername = errors.New("username must not be empty")
)
