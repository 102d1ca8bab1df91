package auth

import (
	"context"
	"time"
)

// UserStore is the credential store. Lookups that match nothing return an
// error wrapping shared.ErrNotFound; duplicate emails wrap shared.ErrValidation.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user *User) error
	UpdateDetails(ctx context.Context, id, name, email string) (*User, error)
	// SetPassword stores a new digest and clears any reset token.
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	// FindByResetToken returns the user holding tokenHash with an expiry
	// strictly after now.
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*User, error)
}
