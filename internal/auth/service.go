package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/devcamper/devcamper-api/internal/platform/mail"
	"github.com/devcamper/devcamper-api/internal/shared"
)

// MailQueue accepts mail for asynchronous, best-effort delivery.
type MailQueue interface {
	Enqueue(ctx context.Context, msg mail.Message) error
}

// Service wraps authentication business rules.
type Service struct {
	store  UserStore
	hasher PasswordHasher
	tokens *TokenIssuer
	sender mail.Sender
	queue  MailQueue
	logger *slog.Logger
	now    func() time.Time

	// dummyHash is verified against when the email is unknown so that both
	// login failure paths cost one bcrypt comparison.
	dummyHash string
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithMailQueue sets the queue used for welcome mail.
func WithMailQueue(q MailQueue) ServiceOption {
	return func(s *Service) { s.queue = q }
}

// WithClock overrides the time source of the service and its token issuer.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
		s.tokens.now = now
	}
}

// NewService constructs a new Service.
func NewService(store UserStore, hasher PasswordHasher, tokens *TokenIssuer, sender mail.Sender, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if store == nil || hasher == nil || tokens == nil || sender == nil {
		return nil, errors.New("auth: store, hasher, tokens and sender are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{store: store, hasher: hasher, tokens: tokens, sender: sender, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	dummy, err := hasher.Hash(context.Background(), uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("auth: prepare dummy hash: %w", err)
	}
	s.dummyHash = dummy
	return s, nil
}

// Tokens exposes the session token issuer.
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register creates a standard account and signs it in. Admin accounts are
// created through the user-management endpoints only.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	role, err := shared.ParseRole(in.Role)
	if err != nil {
		return nil, err
	}
	if role == shared.RoleAdmin {
		return nil, shared.Errorf(shared.ErrValidation, "%s is not a valid role", in.Role)
	}
	digest, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user := &User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		Role:         role,
		PasswordHash: digest,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	s.enqueueWelcome(ctx, user)
	return s.signIn(user)
}

// Login checks credentials. Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, shared.Errorf(shared.ErrValidation, "Please provide an email and password")
	}
	user, err := s.store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		_, _ = s.hasher.Verify(ctx, password, s.dummyHash)
		return nil, invalidCredentials()
	}
	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		s.logger.Error("verify password", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, invalidCredentials()
	}
	if !ok {
		return nil, invalidCredentials()
	}
	return s.signIn(user)
}

// Me returns the profile for userID.
func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	return s.store.FindByID(ctx, userID)
}

// UpdateDetails changes name and/or email; empty values are left unchanged.
func (s *Service) UpdateDetails(ctx context.Context, userID, name, email string) (*User, error) {
	current, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = current.Name
	}
	if email = normalizeEmail(email); email == "" {
		email = current.Email
	}
	return s.store.UpdateDetails(ctx, userID, name, email)
}

// UpdatePassword replaces the password after checking the current one.
func (s *Service) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (*Result, error) {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok, err := s.hasher.Verify(ctx, currentPassword, user.PasswordHash)
	if err != nil || !ok {
		return nil, shared.Errorf(shared.ErrUnauthorized, "Password is incorrect")
	}
	if err := s.storePassword(ctx, user, newPassword); err != nil {
		return nil, err
	}
	return s.signIn(user)
}

// ForgotResult describes a reset token that was issued and delivered.
type ForgotResult struct {
	UserID    string
	ExpiresAt time.Time
}

// ForgotPassword issues a reset token for email and mails the reset link
// built from resetBaseURL. A failed send rolls the token back before
// ErrEmailDelivery is returned.
func (s *Service) ForgotPassword(ctx context.Context, email, resetBaseURL string) (*ForgotResult, error) {
	user, err := s.store.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.Errorf(shared.ErrNotFound, "There is no user with that email")
		}
		return nil, err
	}

	token, err := GenerateResetToken(s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.SetResetToken(ctx, user.ID, token.Hash, token.ExpiresAt); err != nil {
		return nil, err
	}

	if sendErr := s.sender.Send(ctx, resetMessage(user.Email, resetBaseURL, token.Plaintext)); sendErr != nil {
		return nil, s.rollbackResetToken(ctx, user, sendErr)
	}
	return &ForgotResult{UserID: user.ID, ExpiresAt: token.ExpiresAt}, nil
}

// rollbackResetToken clears a reset token whose delivery failed.
func (s *Service) rollbackResetToken(ctx context.Context, user *User, sendErr error) error {
	s.logger.Warn("reset email not sent", slog.String("user_id", user.ID), slog.Any("error", sendErr))
	cause := sendErr
	if clearErr := s.store.ClearResetToken(context.WithoutCancel(ctx), user.ID); clearErr != nil {
		s.logger.Error("rollback reset token", slog.String("user_id", user.ID), slog.Any("error", clearErr))
		cause = errors.Join(sendErr, clearErr)
	}
	return shared.Wrap(shared.ErrEmailDelivery, cause, "Email could not be sent")
}

// ResetPassword consumes a reset token and sets a new password.
func (s *Service) ResetPassword(ctx context.Context, plaintext, newPassword string) (*Result, error) {
	now := s.now()
	user, err := s.store.FindByResetToken(ctx, HashResetToken(plaintext), now)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.Errorf(shared.ErrInvalidToken, "Invalid token")
		}
		return nil, err
	}
	if !user.HasLiveResetToken(now) {
		return nil, shared.Errorf(shared.ErrInvalidToken, "Invalid token")
	}
	if err := s.storePassword(ctx, user, newPassword); err != nil {
		return nil, err
	}
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	return s.signIn(user)
}

// Authenticate resolves a session token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) storePassword(ctx context.Context, user *User, password string) error {
	digest, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	if err := s.store.SetPassword(ctx, user.ID, digest); err != nil {
		return err
	}
	user.PasswordHash = digest
	return nil
}

func (s *Service) signIn(user *User) (*Result, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &Result{User: user, Token: token}, nil
}

func (s *Service) enqueueWelcome(ctx context.Context, user *User) {
	if s.queue == nil {
		return
	}
	msg := mail.Message{
		To:      user.Email,
		Subject: "Welcome to DevCamper",
		Body:    fmt.Sprintf("Hi %s,\n\nYour DevCamper account is ready.", user.Name),
	}
	if err := s.queue.Enqueue(ctx, msg); err != nil {
		s.logger.Warn("enqueue welcome mail", slog.String("user_id", user.ID), slog.Any("error", err))
	}
}

func resetMessage(to, baseURL, plaintext string) mail.Message {
	resetURL := strings.TrimRight(baseURL, "/") + "/api/v1/auth/resetpassword/" + plaintext
	return mail.Message{
		To:      to,
		Subject: "Password reset token",
		Body: "You are receiving this email because you (or someone else) has requested the reset of a password. " +
			"Please make a PUT request to: \n\n " + resetURL,
	}
}

func invalidCredentials() error {
	return shared.Errorf(shared.ErrUnauthorized, "Invalid credentials")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
