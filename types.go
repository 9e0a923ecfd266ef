package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Logger is the structured logger used across the package. Arguments
// after the message are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetLoginRoute() string
	GetSuccessRedirect() string
}

// UserStore persists user accounts. Lookups that find nothing return
// ErrUserNotFound and inserts that collide on email return
// ErrUserAlreadyExists.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	CreateUser(ctx context.Context, user *User) (*User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// Message is an outbound email ready to be delivered by a Mailer.
type Message struct {
	FromName  string
	FromEmail string
	ToName    string
	ToEmail   string
	Subject   string
	Body      string
}

// Mailer composes and delivers transactional email.
type Mailer interface {
	CreateMessage(body, toEmail, toName, subject string) (*Message, error)
	Send(ctx context.Context, msg *Message) error
}

// ResetTokenRegistry remembers which password reset tokens were already
// spent. Consume reports true the first time an id is seen. Release hands a
// consumed id back when the password change it guarded did not happen.
type ResetTokenRegistry interface {
	Consume(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error)
	Release(ctx context.Context, tokenID string) error
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] AUTH " + line(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] AUTH " + line(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] AUTH " + line(msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] AUTH " + line(msg, args...))
}

func line(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(msg, "\n"))
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	b.WriteString("\n")
	return b.String()
}
