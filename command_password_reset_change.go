package auth

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

type ChangePasswordMessage struct {
	Claim           *PasswordResetClaim
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

func (e ChangePasswordMessage) Type() string { return "user.password_reset.change" }

func (e ChangePasswordMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Password, validation.Required, validation.By(ValidatePasswordStrength)),
	)
}

// ChangePasswordHandler stores a new password for the email carried by an
// authorized reset claim.
type ChangePasswordHandler struct {
	users    UserStore
	registry ResetTokenRegistry
	activity ActivitySink
	logger   Logger
}

// NewChangePasswordHandler creates a handler with sane defaults.
func NewChangePasswordHandler(users UserStore) *ChangePasswordHandler {
	return &ChangePasswordHandler{
		users:    users,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithResetTokenRegistry makes every reset token single use. Without a
// registry an authorized token can change the password until it expires.
func (h *ChangePasswordHandler) WithResetTokenRegistry(registry ResetTokenRegistry) *ChangePasswordHandler {
	h.registry = registry
	return h
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *ChangePasswordHandler) WithActivitySink(sink ActivitySink) *ChangePasswordHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	claim := event.Claim
	if claim == nil {
		return ErrTokenNotFound
	}

	if !claim.Authorized {
		h.recordFailure(ctx, claim.Email, "not_authorized")
		return ErrResetNotAuthorized
	}

	if event.Password != event.ConfirmPassword {
		return ErrPasswordsDontMatch
	}

	if err := event.Validate(); err != nil {
		return validationFailed(err, "invalid password")
	}

	user, err := h.users.GetUserByEmail(ctx, claim.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.recordFailure(ctx, claim.Email, "user_not_found")
			return ErrEmailNotFound
		}
		return asInternal(err, "failed to retrieve user for password change")
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		return asInternal(err, "failed to hash password")
	}

	if h.registry != nil {
		first, err := h.registry.Consume(ctx, claim.ID, claim.Expires())
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check password reset token")
		}
		if !first {
			h.recordFailure(ctx, claim.Email, "token_reused")
			return ErrResetTokenUsed
		}
	}

	if err := h.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		h.release(ctx, claim.ID)
		if errors.Is(err, ErrUserNotFound) {
			return ErrEmailNotFound
		}
		return asInternal(err, "failed to update password")
	}

	h.logger.Info("password changed", "user_id", user.ID)

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventPasswordResetSuccess,
		UserID:    user.ID.String(),
		Email:     user.Email,
	})

	return nil
}

// release returns the token to the registry so a failed write can be
// retried with the same reset cookie.
func (h *ChangePasswordHandler) release(ctx context.Context, tokenID string) {
	if h.registry == nil {
		return
	}
	if err := h.registry.Release(ctx, tokenID); err != nil {
		h.logger.Warn("failed to release password reset token", "token_id", tokenID, "error", err)
	}
}

func (h *ChangePasswordHandler) recordFailure(ctx context.Context, email, reason string) {
	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventPasswordResetFailure,
		Email:     email,
		Metadata:  map[string]any{"reason": reason},
	})
}
