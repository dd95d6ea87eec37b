package domain

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUnauthorized       = errors.New("not authorized")
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("access forbidden")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrFeedbackNotAllowed = errors.New("feedback is only accepted for completed requests")
	ErrAlreadyPartner     = errors.New("partner profile already exists")

	// ErrCorruptStorage marks durable client state that no longer decodes.
	ErrCorruptStorage = errors.New("stored data is corrupted")
)
