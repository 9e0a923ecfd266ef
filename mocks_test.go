package auth_test

import (
	"context"
	"sync"
	"time"

	"github.com/ahp-web/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockConfig implements auth.Config
type MockConfig struct {
	SigningKey      string
	LoginRoute      string
	SuccessRedirect string
}

func (m MockConfig) GetSigningKey() string      { return m.SigningKey }
func (m MockConfig) GetLoginRoute() string      { return m.LoginRoute }
func (m MockConfig) GetSuccessRedirect() string { return m.SuccessRedirect }

// memUserStore is an in memory auth.UserStore
type memUserStore struct {
	mu      sync.Mutex
	byEmail map[string]*auth.User
	fail    error
}

func newMemUserStore(users ...*auth.User) *memUserStore {
	s := &memUserStore{byEmail: map[string]*auth.User{}}
	for _, u := range users {
		s.byEmail[u.Email] = u
	}
	return s
}

func (s *memUserStore) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	u, ok := s.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) GetUserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	for _, u := range s.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (s *memUserStore) CreateUser(_ context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	if _, ok := s.byEmail[user.Email]; ok {
		return nil, auth.ErrUserAlreadyExists
	}
	now := time.Now()
	cp := *user
	cp.CreatedAt = &now
	s.byEmail[user.Email] = &cp
	out := cp
	return &out, nil
}

func (s *memUserStore) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	for _, u := range s.byEmail {
		if u.ID == id {
			u.PasswordHash = hash
			return nil
		}
	}
	return auth.ErrUserNotFound
}

func (s *memUserStore) hashFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byEmail[email]; ok {
		return u.PasswordHash
	}
	return ""
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) CreateMessage(body, toEmail, toName, subject string) (*auth.Message, error) {
	args := m.Called(body, toEmail, toName, subject)
	msg, _ := args.Get(0).(*auth.Message)
	return msg, args.Error(1)
}

func (m *MockMailer) Send(ctx context.Context, msg *auth.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockActivitySink implements auth.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event auth.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockResetTokenRegistry implements auth.ResetTokenRegistry
type MockResetTokenRegistry struct {
	mock.Mock
}

func (m *MockResetTokenRegistry) Consume(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	args := m.Called(ctx, tokenID, expiresAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockResetTokenRegistry) Release(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// captureMailer records messages instead of sending them.
type captureMailer struct {
	mu   sync.Mutex
	sent []*auth.Message
}

func (c *captureMailer) CreateMessage(body, toEmail, toName, subject string) (*auth.Message, error) {
	return &auth.Message{ToEmail: toEmail, ToName: toName, Subject: subject, Body: body}, nil
}

func (c *captureMailer) Send(_ context.Context, msg *auth.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureMailer) last() *auth.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sent) == 0 {
		return nil
	}
	return c.sent[len(c.sent)-1]
}

func mustUser(t interface{ Fatalf(string, ...any) }, name, email, password string) *auth.User {
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &auth.User{ID: uuid.New(), Name: name, Email: email, PasswordHash: hash}
}
