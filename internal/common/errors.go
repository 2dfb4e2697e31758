// Package common defines shared constants and sentinel errors used across
// the miniwallet client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Auth lifecycle errors.
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAuthExchangeFailed = errors.New("authentication exchange failed")
	ErrAuthInProgress     = errors.New("authentication already in progress")
	ErrNoCredentialSource = errors.New("no platform credential source available")

	// Validation errors (resolved client-side, never reach the network).
	ErrValidation = errors.New("validation error")
	ErrConversion = errors.New("invalid conversion amount")

	// Repository-level errors.
	ErrNotFound = errors.New("not found")
)
