package mailer

import (
	"context"

	"github.com/ahp-web/auth"
)

// LogMailer writes messages to the logger instead of sending them. Use it
// in development when no SMTP relay is configured.
type LogMailer struct {
	senderName  string
	senderEmail string
	logger      auth.Logger
}

var _ auth.Mailer = (*LogMailer)(nil)

func NewLogMailer(senderName, senderEmail string, logger auth.Logger) *LogMailer {
	if logger == nil {
		logger = nopLogger{}
	}
	return &LogMailer{senderName: senderName, senderEmail: senderEmail, logger: logger}
}

func (l *LogMailer) CreateMessage(body, toEmail, toName, subject string) (*auth.Message, error) {
	msg := &auth.Message{
		FromName:  l.senderName,
		FromEmail: l.senderEmail,
		ToName:    toName,
		ToEmail:   toEmail,
		Subject:   subject,
		Body:      body,
	}

	if _, err := Build(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (l *LogMailer) Send(ctx context.Context, msg *auth.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.logger.Info("email",
		"from", msg.FromEmail,
		"to", msg.ToEmail,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
