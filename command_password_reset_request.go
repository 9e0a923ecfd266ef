package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// ResetCodeEmailSubject is the subject of the one-time code email.
const ResetCodeEmailSubject = "Email Code"

type RequestPasswordResetMessage struct {
	Email      string `json:"email" form:"email"`
	OnResponse func(resp *RequestPasswordResetResponse)
}

func (e RequestPasswordResetMessage) Type() string { return "user.password_reset.request" }

func (e RequestPasswordResetMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, validation.Length(3, 100), is.Email),
	)
}

type RequestPasswordResetResponse struct {
	Claim         *PasswordResetClaim
	ExpireMinutes int
}

// RequestPasswordResetHandler emails a one-time code and hands back the
// unauthorized reset claim that carries it.
type RequestPasswordResetHandler struct {
	users    UserStore
	mailer   Mailer
	activity ActivitySink
	logger   Logger
}

// NewRequestPasswordResetHandler creates a handler with sane defaults.
func NewRequestPasswordResetHandler(users UserStore, mailer Mailer) *RequestPasswordResetHandler {
	return &RequestPasswordResetHandler{
		users:    users,
		mailer:   mailer,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *RequestPasswordResetHandler) WithActivitySink(sink ActivitySink) *RequestPasswordResetHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RequestPasswordResetHandler) WithLogger(logger Logger) *RequestPasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RequestPasswordResetHandler) Execute(ctx context.Context, event RequestPasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RequestPasswordResetHandler) execute(ctx context.Context, event RequestPasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	event.Email = NormalizeEmail(event.Email)

	if err := event.Validate(); err != nil {
		return validationFailed(err, "invalid password reset request")
	}

	user, err := h.users.GetUserByEmail(ctx, event.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrEmailNotFound
		}
		return asInternal(err, "failed to retrieve user for password reset")
	}

	claim, err := NewPasswordResetClaim(user.Email)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create password reset claim")
	}

	msg, err := h.mailer.CreateMessage(ResetCodeEmailBody(claim.Code), user.Email, user.Name, ResetCodeEmailSubject)
	if err != nil {
		h.logger.Error("failed to compose reset email", "user_id", user.ID, "error", err)
		return ErrMailDelivery
	}

	if err := h.mailer.Send(ctx, msg); err != nil {
		h.logger.Error("failed to send reset email", "user_id", user.ID, "error", err)
		return ErrMailDelivery
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventPasswordResetRequested,
		UserID:    user.ID.String(),
		Email:     user.Email,
	})

	if event.OnResponse != nil {
		event.OnResponse(&RequestPasswordResetResponse{
			Claim:         claim,
			ExpireMinutes: int(PasswordResetClaimTTL / time.Minute),
		})
	}

	return nil
}

// ResetCodeEmailBody renders the HTML body of the one-time code email.
func ResetCodeEmailBody(code string) string {
	return fmt.Sprintf(
		"<p>Your one time verification code is: <strong>%s</strong></p>\n<p>Your code will expire in %d minutes</p>\n",
		code,
		int(PasswordResetClaimTTL/time.Minute),
	)
}
