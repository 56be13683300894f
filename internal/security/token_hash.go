package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// resetTokenBytes is the entropy of a password reset token.
const resetTokenBytes = 32

// HashToken returns the hex SHA-256 of an opaque token. Refresh tokens and reset tokens are stored
// only in this form.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// TokenHashEqual reports in constant time whether token hashes to stored.
func TokenHashEqual(token, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(stored)) == 1
}

// NewResetToken returns a random hex reset token to hand out once, and the hash to persist.
func NewResetToken() (raw, hash string, err error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, HashToken(raw), nil
}
