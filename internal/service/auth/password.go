package auth

import (
	"crypto/subtle"

	"github.com/campuslab/elective-api/internal/config"
	"golang.org/x/crypto/bcrypt"
)

// PasswordVerifier defines the interface for comparing passwords.
type PasswordVerifier interface {
	// Compare compares a hashed password with its possible plaintext equivalent.
	// Returns nil on success, or an error on failure (e.g., mismatch).
	Compare(hashedPassword, password string) error
}

// BcryptVerifier implements PasswordVerifier using bcrypt.
type BcryptVerifier struct{}

// Compare implements the PasswordVerifier interface using bcrypt.
func (BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// AdminAuthenticator checks head-of-department credentials against the
// username and bcrypt hash from configuration.
type AdminAuthenticator struct {
	username     string
	passwordHash string
	verifier     PasswordVerifier
}

// NewAdminAuthenticator creates an authenticator from cfg. A nil verifier
// means bcrypt.
func NewAdminAuthenticator(cfg config.AuthConfig, verifier PasswordVerifier) *AdminAuthenticator {
	if verifier == nil {
		verifier = BcryptVerifier{}
	}
	return &AdminAuthenticator{
		username:     cfg.AdminUsername,
		passwordHash: cfg.AdminPasswordHash,
		verifier:     verifier,
	}
}

// Authenticate returns nil when username and password match the configured
// administrator, ErrAdminLoginDisabled when no hash is configured and
// ErrInvalidCredentials otherwise.
func (a *AdminAuthenticator) Authenticate(username, password string) error {
	if a.passwordHash == "" {
		return ErrAdminLoginDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// The hash is compared even for unknown usernames so both paths take
	// bcrypt time.
	passErr := a.verifier.Compare(a.passwordHash, password)
	if !userOK || passErr != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Username is the configured administrator name, used as token subject.
func (a *AdminAuthenticator) Username() string {
	return a.username
}
