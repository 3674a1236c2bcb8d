// Package cryptox verifies administrator passwords against the value kept in
// the remote admin_users table.
package cryptox

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// IsBcryptHash reports whether stored looks like a bcrypt hash.
func IsBcryptHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// VerifyPassword compares candidate with the stored credential. Bcrypt hashes
// are checked with bcrypt; any other value is treated as the legacy plain
// column and compared in constant time. Empty stored values never match.
func VerifyPassword(stored string, candidate []byte) bool {
	if stored == "" {
		return false
	}
	if IsBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), candidate) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), candidate) == 1
}

// HashPassword returns a bcrypt hash of password at the default cost.
func HashPassword(password []byte) (string, error) {
	h, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
