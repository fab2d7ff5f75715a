package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/herbal-remedy-api/internal/domain"
)

const (
	codeInvalidBody  = "invalid_body"
	codeUnauthorized = "invalid_token"
	codeInternal     = "internal_error"
)

type errorKind struct {
	err    error
	status int
	code   string
}

// errorKinds is checked in order; the first sentinel found in the chain wins.
var errorKinds = []errorKind{
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrUnverified, http.StatusForbidden, "unverified"},
	{domain.ErrExpired, http.StatusGone, "expired"},
	{domain.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{domain.ErrAlreadyVerified, http.StatusConflict, "already_verified"},
	{domain.ErrIntegrity, http.StatusInternalServerError, "integrity_error"},
	{domain.ErrUpstream, http.StatusBadGateway, "upstream_error"},
	{domain.ErrDispatch, http.StatusBadGateway, "dispatch_error"},
	{domain.ErrPersistence, http.StatusServiceUnavailable, "persistence_error"},
}

// statusFor maps a service error to its HTTP status and stable code.
func statusFor(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, codeInternal
}

// writeServiceError writes the mapped status. Server-side faults are logged in full; the
// client gets only the status text and the stable code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "code", code, "err", err)
		msg = strings.ToLower(http.StatusText(status))
	}
	writeError(w, status, msg, code)
}
