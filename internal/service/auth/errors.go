package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid or signature doesn't match
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken indicates the token has expired
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future)
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided
	ErrMissingToken = errors.New("authentication token is missing")

	// ErrInvalidRole indicates a token carries a role this service does not issue
	ErrInvalidRole = errors.New("invalid role")

	// ErrInvalidCredentials indicates a failed administrator login
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAdminLoginDisabled indicates no administrator password hash is configured
	ErrAdminLoginDisabled = errors.New("administrator login is disabled")
)
