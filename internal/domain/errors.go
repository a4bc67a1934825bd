package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// ErrMissingCredentials means a required provider secret is absent from
	// the environment. Operator-fixable; no outbound call is attempted.
	ErrMissingCredentials = errors.New("missing provider credentials")

	// ErrInsufficientContent means neither the direct scrape nor the search
	// fallback produced enough text to extract reviews from. Recoverable:
	// the admin is expected to add reviews manually.
	ErrInsufficientContent = errors.New("insufficient review content")
)
