package services

import "errors"

var (
	// ErrValidation marks caller mistakes: missing fields or out-of-range values.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks lookups for records that do not exist.
	ErrNotFound = errors.New("record not found")

	// ErrNotEligible marks reviews attempted for sessions that were never
	// completed.
	ErrNotEligible = errors.New("session is not eligible for review")

	// ErrConflict marks writes rejected by a storage-level uniqueness
	// guarantee, e.g. a second review racing for the same session.
	ErrConflict = errors.New("conflicting record already exists")

	// ErrInvalidTransition marks session status changes outside the
	// lifecycle graph. The stored status is left untouched.
	ErrInvalidTransition = errors.New("invalid session status transition")
)
