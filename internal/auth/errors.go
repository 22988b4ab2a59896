package auth

import "errors"

var (
	// ErrMissingAuth indicates the request carried no Authorization header.
	ErrMissingAuth = errors.New("missing authorization")
	// ErrInvalidScheme indicates an Authorization header whose scheme is not Bearer.
	ErrInvalidScheme = errors.New("invalid auth scheme")
	// ErrInvalidToken covers signature mismatches, unexpected algorithms and expired tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrMalformedToken indicates input that is not a structurally valid token.
	ErrMalformedToken = errors.New("malformed token")
	// ErrAccountNotFound indicates a valid token whose subject no longer exists.
	ErrAccountNotFound = errors.New("account not found")
)
