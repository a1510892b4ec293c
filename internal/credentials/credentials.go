// Package credentials hashes and verifies user passwords with bcrypt.
package credentials

import (
	"errors"

	"warbler/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor used for new digests.
var Cost = bcrypt.DefaultCost

// dummyDigest is compared against when the account does not exist, so a
// missing user and a wrong password take about the same time.
var dummyDigest, _ = bcrypt.GenerateFromPassword([]byte("warbler-timing-equalizer"), bcrypt.DefaultCost)

// Hash returns a salted one-way digest of plaintext.
func Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", models.NewValidationError("Password is required")
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", models.NewValidationError("Password must be at most 72 bytes")
		}
		return "", models.NewInternalError(err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Malformed digests never match.
func Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// Burn spends one comparison's worth of work without a real digest.
func Burn(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(dummyDigest, []byte(plaintext))
}
