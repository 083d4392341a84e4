package app

import "errors"

var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidCredential = errors.New("invalid identity or secret")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrPaperNotFound     = errors.New("paper not found")

	ErrCredentialMisconfigured = errors.New("admin credential is not configured")
)
