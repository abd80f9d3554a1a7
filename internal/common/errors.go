// Package common defines shared constants and sentinel errors used across
// the gophauth server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")
	ErrValidation = errors.New("validation error")

	// Registration flow errors.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrNoPendingRegistration = errors.New("no pending registration")
	ErrInvalidOtp            = errors.New("invalid otp")
	ErrEmailDelivery         = errors.New("email delivery failed")

	// Credential errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")

	// Authorization gate errors.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)
