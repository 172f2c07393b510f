// Package auth covers credentials: password hashing and validation,
// session tokens and the session cookie both web handlers share.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrInvalidEmail     = errors.New("email address is not valid")
)

// HashPassword returns the SHA-256 hex digest of password. The digest
// is stored verbatim in the project file, so the scheme cannot change
// without migrating existing files.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether password hashes to hash.
func VerifyPassword(password, hash string) bool {
	digest := HashPassword(password)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(hash)) == 1
}

// ValidateCredentials applies the registration rules: username at
// least 3 characters, password at least 6, and email, when present,
// must contain an '@'. Login paths pass an empty email.
func ValidateCredentials(username, password, email string) error {
	if len(strings.TrimSpace(username)) < 3 {
		return ErrUsernameTooShort
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	if email != "" && !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}
	return nil
}
