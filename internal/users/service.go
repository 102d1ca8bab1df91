package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// RepositoryPort defines data access methods for account administration.
type RepositoryPort interface {
	List(ctx context.Context, params shared.ListParams) ([]auth.User, int, error)
	FindByID(ctx context.Context, id string) (*auth.User, error)
	Create(ctx context.Context, user *auth.User) error
	Update(ctx context.Context, id, name, email string, role shared.Role) (*auth.User, error)
	Delete(ctx context.Context, id string) error
}

// Service handles account administration.
type Service struct {
	repo   RepositoryPort
	hasher auth.PasswordHasher
	now    func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, hasher auth.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher, now: time.Now}
}

// CreateInput carries an admin-created account.
type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateInput carries a partial account update; empty fields are unchanged.
type UpdateInput struct {
	Name  string
	Email string
	Role  string
}

// List returns one page of accounts and the total count.
func (s *Service) List(ctx context.Context, params shared.ListParams) ([]auth.User, int, error) {
	return s.repo.List(ctx, params)
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, id string) (*auth.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds an account with any role.
func (s *Service) Create(ctx context.Context, in CreateInput) (*auth.User, error) {
	role, err := shared.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	digest, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}
	user := &auth.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Role:         role,
		PasswordHash: digest,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies in to the account id.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*auth.User, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name, email, role := current.Name, current.Email, current.Role
	if v := strings.TrimSpace(in.Name); v != "" {
		name = v
	}
	if v := strings.TrimSpace(in.Email); v != "" {
		email = strings.ToLower(v)
	}
	if in.Role != "" {
		if role, err = shared.ParseRole(in.Role); err != nil {
			return nil, err
		}
	}
	return s.repo.Update(ctx, id, name, email, role)
}

// Delete removes the account id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
