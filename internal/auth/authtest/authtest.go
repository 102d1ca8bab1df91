// Package authtest provides an in-memory account store and token helpers for
// handler tests that sit behind auth.Middleware.
package authtest

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/platform/mail"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// Store is an in-memory auth.UserStore.
type Store struct {
	mu    sync.Mutex
	users map[string]auth.User
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{users: map[string]auth.User{}}
}

func (s *Store) find(match func(auth.User) bool) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			cp := u
			return &cp, nil
		}
	}
	return nil, shared.Errorf(shared.ErrNotFound, "User not found")
}

func (s *Store) update(id string, fn func(*auth.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return shared.Errorf(shared.ErrNotFound, "User not found with id of %s", id)
	}
	fn(&u)
	s.users[id] = u
	return nil
}

func (s *Store) FindByID(_ context.Context, id string) (*auth.User, error) {
	return s.find(func(u auth.User) bool { return u.ID == id })
}

func (s *Store) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return s.find(func(u auth.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *Store) FindByResetToken(_ context.Context, hash string, now time.Time) (*auth.User, error) {
	return s.find(func(u auth.User) bool {
		return u.ResetPasswordToken == hash && u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now)
	})
}

func (s *Store) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return shared.Errorf(shared.ErrValidation, "Duplicate field value entered")
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Store) UpdateDetails(_ context.Context, id, name, email string) (*auth.User, error) {
	if err := s.update(id, func(u *auth.User) { u.Name, u.Email = name, email }); err != nil {
		return nil, err
	}
	return s.FindByID(context.Background(), id)
}

func (s *Store) SetPassword(_ context.Context, id, hash string) error {
	return s.update(id, func(u *auth.User) {
		u.PasswordHash = hash
		u.ResetPasswordToken, u.ResetPasswordExpire = "", nil
	})
}

func (s *Store) SetResetToken(_ context.Context, id, hash string, expires time.Time) error {
	return s.update(id, func(u *auth.User) { u.ResetPasswordToken, u.ResetPasswordExpire = hash, &expires })
}

func (s *Store) ClearResetToken(_ context.Context, id string) error {
	return s.update(id, func(u *auth.User) { u.ResetPasswordToken, u.ResetPasswordExpire = "", nil })
}

// Env bundles a middleware backed by Store and a token issuer.
type Env struct {
	Store      *Store
	Tokens     *auth.TokenIssuer
	Service    *auth.Service
	Middleware *auth.Middleware
}

// New builds an Env whose mail sender discards messages.
func New(t testing.TB) *Env {
	t.Helper()
	store := NewStore()
	tokens, err := auth.NewTokenIssuer([]byte("authtest-secret"), time.Hour)
	if err != nil {
		t.Fatalf("token issuer: %v", err)
	}
	discard := mail.SenderFunc(func(context.Context, mail.Message) error { return nil })
	svc, err := auth.NewService(store, auth.NewBcryptHasher(4, 2), tokens, discard, nil)
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}
	return &Env{Store: store, Tokens: tokens, Service: svc, Middleware: auth.NewMiddleware(svc, nil)}
}

// Login stores an account with id and role and returns a bearer token for it.
func (e *Env) Login(t testing.TB, id string, role shared.Role) string {
	t.Helper()
	err := e.Store.Create(context.Background(), &auth.User{ID: id, Name: id, Email: id + "@example.com", Role: role, CreatedAt: time.Now()})
	if err != nil {
		t.Fatalf("create %s: %v", id, err)
	}
	tok, err := e.Tokens.Issue(id)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok.Value
}
