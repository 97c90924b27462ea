// Package common defines shared constants and sentinel errors used across
// the Grapevine server and CLI. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidFileKey     = errors.New("invalid file key")
	ErrNotAudio           = errors.New("only audio files are allowed")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
	ErrNothingToUpdate    = errors.New("nothing to update")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
