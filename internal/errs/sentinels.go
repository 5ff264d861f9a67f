// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across client layers.
var (
	// ErrNotFound indicates the requested entity or stored record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates failed authentication (bad credentials, decode failure).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates an authenticated principal lacks a required permission.
	ErrForbidden = errors.New("forbidden")

	// ErrExpired indicates the session's expiresAt has passed.
	ErrExpired = errors.New("session expired")

	// ErrNoSession indicates no usable session is present (login required).
	ErrNoSession = errors.New("login required")

	// ErrValidation indicates a payload rejected before it reached the backend.
	ErrValidation = errors.New("validation")
)
