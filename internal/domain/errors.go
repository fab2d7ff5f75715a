package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	// ErrNotFound also covers "not yours" and "wrong state" so callers cannot test for
	// records owned by someone else.
	ErrNotFound = errors.New("not found")

	ErrUnverified         = errors.New("account not verified")
	ErrExpired            = errors.New("expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyVerified    = errors.New("already verified")
	ErrIntegrity          = errors.New("data integrity fault")

	ErrUpstream    = errors.New("upstream service failure")
	ErrDispatch    = errors.New("mail dispatch failure")
	ErrPersistence = errors.New("store operation failed")
)
