package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Reset token configuration.
const (
	ResetTokenBytes = 20
	ResetTokenTTL   = 10 * time.Minute
)

// ResetToken is a freshly generated password-reset credential. Only Hash and
// ExpiresAt are persisted; Plaintext goes to the user by email.
type ResetToken struct {
	Plaintext string
	Hash      string
	ExpiresAt time.Time
}

// GenerateResetToken creates a random token valid for ResetTokenTTL from now.
func GenerateResetToken(now time.Time) (ResetToken, error) {
	raw := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return ResetToken{}, fmt.Errorf("auth: generate reset token: %w", err)
	}
	plaintext := hex.EncodeToString(raw)
	return ResetToken{
		Plaintext: plaintext,
		Hash:      HashResetToken(plaintext),
		ExpiresAt: now.Add(ResetTokenTTL),
	}, nil
}

// HashResetToken computes the SHA256 hex digest used for lookup equality.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
