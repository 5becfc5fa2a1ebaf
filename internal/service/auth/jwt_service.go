// Package auth issues and validates the bearer tokens that separate students
// from the head of department, and verifies administrator passwords.
package auth

import (
	"context"
	"time"
)

// Role is the kind of caller a token was issued to.
type Role string

// Roles issued by the service.
const (
	RoleStudent Role = "student"
	RoleHOD     Role = "hod"
)

// Valid reports whether r is a role the service issues.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleHOD
}

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed access token for subject (a student id
	// or the administrator username) acting as role.
	GenerateToken(ctx context.Context, subject string, role Role) (string, error)

	// ValidateToken validates the provided token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid or ErrInvalidToken on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims represents the validated content of a token.
type Claims struct {
	Subject   string    `json:"sub,omitempty"`
	Role      Role      `json:"role,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
