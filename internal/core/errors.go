package core

import (
	"errors"
	"fmt"
)

// Base error classes. Handlers map these to transport status codes;
// everything the core raises wraps one of them.
var (
	// ErrNotFound marks a lookup for an id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks malformed or out-of-range caller input.
	// It is never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnavailable marks an underlying storage failure. Reads may be
	// retried; payment application may not (no idempotency keys).
	ErrUnavailable = errors.New("store unavailable")
)

// Validation sentinels. Each wraps ErrInvalidInput so callers can match
// either the specific failure or the whole class.
var (
	ErrInvalidAmount   = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrEmptyName       = fmt.Errorf("%w: empty name", ErrInvalidInput)
	ErrEmptyInitials   = fmt.Errorf("%w: empty initials", ErrInvalidInput)
	ErrEmptyColor      = fmt.Errorf("%w: empty color", ErrInvalidInput)
	ErrEmptyPersonRef  = fmt.Errorf("%w: missing person reference", ErrInvalidInput)
	ErrEmptyExpenseRef = fmt.Errorf("%w: missing expense reference", ErrInvalidInput)
	ErrEmptyCategory   = fmt.Errorf("%w: empty category", ErrInvalidInput)
	ErrInvalidPayType  = fmt.Errorf("%w: invalid payment type", ErrInvalidInput)
)
