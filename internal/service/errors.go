package service

import "errors"

var (
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPostNotFound       = errors.New("post not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrValidationEmpty    = errors.New("required field is empty")
	ErrUsernameTooLong    = errors.New("username exceeds 50 characters")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)
