package service

import "errors"

var (
	// ErrUnauthorized is the single outward-facing authentication failure.
	// Bad tokens, expired tokens, unknown subjects and disabled accounts
	// all collapse into it so the wire never reveals which one happened;
	// the internal cause is only logged.
	ErrUnauthorized = errors.New("service: unauthorized")

	// ErrConflict reports a duplicate username at registration.
	ErrConflict = errors.New("service: username already registered")

	// ErrInvalidInput reports a request the service refuses to process.
	ErrInvalidInput = errors.New("service: invalid input")
)
