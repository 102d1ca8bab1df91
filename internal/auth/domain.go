package auth

import (
	"time"

	"github.com/devcamper/devcamper-api/internal/shared"
)

// User represents an account as held by the credential store.
type User struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Email               string      `json:"email"`
	Role                shared.Role `json:"role"`
	PasswordHash        string      `json:"-"`
	ResetPasswordToken  string      `json:"-"`
	ResetPasswordExpire *time.Time  `json:"-"`
	CreatedAt           time.Time   `json:"createdAt"`
}

// Principal returns the authorization view of u.
func (u *User) Principal() shared.Principal {
	return shared.Principal{ID: u.ID, Role: u.Role}
}

// HasLiveResetToken reports whether u holds a reset token still valid at now.
func (u *User) HasLiveResetToken(now time.Time) bool {
	return u.ResetPasswordToken != "" && u.ResetPasswordExpire != nil && now.Before(*u.ResetPasswordExpire)
}

// Token is a signed session token and its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Result is returned by every operation that signs the caller in.
type Result struct {
	User  *User
	Token Token
}
