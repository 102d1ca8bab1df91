package auth_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/devcamper/devcamper-api/internal/auth"
	"github.com/devcamper/devcamper-api/internal/platform/mail"
	"github.com/devcamper/devcamper-api/internal/shared"
)

type memStore struct {
	mu         sync.Mutex
	users      map[string]*auth.User
	clearCalls int
	clearErr   error
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*auth.User{}}
}

func (s *memStore) get(id string) auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.users[id]
}

func (s *memStore) FindByID(_ context.Context, id string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, shared.Errorf(shared.ErrNotFound, "User not found with id of %s", id)
	}
	cp := *u
	return &cp, nil
}

func (s *memStore) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.Errorf(shared.ErrNotFound, "User not found")
}

func (s *memStore) Create(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return shared.Errorf(shared.ErrValidation, "Duplicate field value entered")
		}
	}
	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *memStore) UpdateDetails(_ context.Context, id, name, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, shared.Errorf(shared.ErrNotFound, "User not found")
	}
	u.Name, u.Email = name, email
	cp := *u
	return &cp, nil
}

func (s *memStore) SetPassword(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.PasswordHash = hash
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
	return nil
}

func (s *memStore) SetResetToken(_ context.Context, id, hash string, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.ResetPasswordToken = hash
	u.ResetPasswordExpire = &expires
	return nil
}

func (s *memStore) ClearResetToken(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearCalls++
	if s.clearErr != nil {
		return s.clearErr
	}
	u := s.users[id]
	u.ResetPasswordToken = ""
	u.ResetPasswordExpire = nil
	return nil
}

func (s *memStore) FindByResetToken(_ context.Context, hash string, now time.Time) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ResetPasswordToken == hash && u.ResetPasswordExpire != nil && u.ResetPasswordExpire.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.Errorf(shared.ErrNotFound, "no reset token")
}

// outbox records sent mail and optionally fails.
type outbox struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

func (o *outbox) lastToken() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.sent) == 0 {
		return ""
	}
	body := o.sent[len(o.sent)-1].Body
	return body[strings.LastIndex(body, "/")+1:]
}

type queueRecorder struct {
	msgs []mail.Message
}

func (q *queueRecorder) Enqueue(_ context.Context, msg mail.Message) error {
	q.msgs = append(q.msgs, msg)
	return nil
}

// clock is a settable time source.
type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}
