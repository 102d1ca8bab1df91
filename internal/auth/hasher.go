package auth

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// PasswordHasher provides password hashing and verification.
type PasswordHasher interface {
	// Hash produces a salted one-way digest of password.
	Hash(ctx context.Context, password string) (string, error)
	// Verify returns (true, nil) on match, (false, nil) on mismatch, or an
	// error when the digest is malformed.
	Verify(ctx context.Context, password, digest string) (bool, error)
}

// BcryptHasher implements PasswordHasher with bcrypt. At most `workers`
// hashes run at once; callers queue on a semaphore.
type BcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewBcryptHasher creates a hasher. cost outside bcrypt's range uses
// bcrypt.DefaultCost; workers <= 0 uses runtime.NumCPU().
func NewBcryptHasher(cost, workers int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &BcryptHasher{cost: cost, sem: semaphore.NewWeighted(int64(workers))}
}

// Hash produces a bcrypt digest of password.
func (h *BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify checks password against digest.
func (h *BcryptHasher) Verify(ctx context.Context, password, digest string) (bool, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.sem.Release(1)

	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
