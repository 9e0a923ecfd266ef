package mailer

import (
	"context"
	"time"

	"github.com/ahp-web/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/wneessen/go-mail"
)

const defaultTimeout = 10 * time.Second

// Options configures the SMTP relay and the sender identity.
type Options struct {
	Host        string
	Port        int
	Username    string
	Password    string
	SenderEmail string
	// SenderName is the display name used in From, e.g. "AHP - Support".
	SenderName string
	Timeout    time.Duration
}

// SMTPMailer delivers auth.Message values over SMTP.
type SMTPMailer struct {
	opts   Options
	logger auth.Logger
}

var _ auth.Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(opts Options) *SMTPMailer {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &SMTPMailer{opts: opts, logger: nopLogger{}}
}

func (s *SMTPMailer) WithLogger(logger auth.Logger) *SMTPMailer {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// CreateMessage addresses body to the recipient from the configured
// sender. Both addresses are checked before returning.
func (s *SMTPMailer) CreateMessage(body, toEmail, toName, subject string) (*auth.Message, error) {
	msg := &auth.Message{
		FromName:  s.opts.SenderName,
		FromEmail: s.opts.SenderEmail,
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

func (s *SMTPMailer) Send(ctx context.Context, msg *auth.Message) error {
	m, err := Build(msg)
	if err != nil {
		return err
	}

	client, err := s.client()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "create smtp client")
	}

	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		s.logger.Error("smtp delivery failed", "host", s.opts.Host, "to", msg.ToEmail, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "send email")
	}

	s.logger.Debug("email sent", "to", msg.ToEmail, "subject", msg.Subject)
	return nil
}

func (s *SMTPMailer) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithTimeout(s.opts.Timeout),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}

	if s.opts.Port > 0 {
		opts = append(opts, mail.WithPort(s.opts.Port))
	}

	if s.opts.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}

	if s.opts.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.opts.Username),
			mail.WithPassword(s.opts.Password),
		)
	}

	return mail.NewClient(s.opts.Host, opts...)
}

// Build converts msg into a go-mail message with an HTML body.
func Build(msg *auth.Message) (*mail.Msg, error) {
	if msg == nil {
		return nil, goerrors.New("message is required", goerrors.CategoryBadInput)
	}

	m := mail.NewMsg()
	if err := m.FromFormat(msg.FromName, msg.FromEmail); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid sender address").
			WithMetadata(map[string]any{"from": msg.FromEmail})
	}

	if err := m.AddToFormat(msg.ToName, msg.ToEmail); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid recipient address").
			WithMetadata(map[string]any{"to": msg.ToEmail})
	}

	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextHTML, msg.Body)
	return m, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
