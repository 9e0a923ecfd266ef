package auth

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

type LoginMessage struct {
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	OnResponse func(resp *LoginResponse)
}

func (e LoginMessage) Type() string { return "user.login" }

func (e LoginMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Email, validation.Required, validation.Length(3, 100)),
		validation.Field(&e.Password, validation.Required),
	)
}

type LoginResponse struct {
	User  *User
	Claim *AuthorizationClaim
}

// LoginHandler verifies email and password and issues a session claim.
type LoginHandler struct {
	users    UserStore
	activity ActivitySink
	logger   Logger
}

// NewLoginHandler creates a handler with sane defaults.
func NewLoginHandler(users UserStore) *LoginHandler {
	return &LoginHandler{
		users:    users,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit login events.
func (h *LoginHandler) WithActivitySink(sink ActivitySink) *LoginHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *LoginHandler) WithLogger(logger Logger) *LoginHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *LoginHandler) Execute(ctx context.Context, event LoginMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during login",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *LoginHandler) execute(ctx context.Context, event LoginMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	event.Email = NormalizeEmail(event.Email)

	if err := event.Validate(); err != nil {
		return validationFailed(err, "invalid login")
	}

	user, err := h.users.GetUserByEmail(ctx, event.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			h.logger.Debug("login for unknown email", "email", event.Email)
			h.recordFailure(ctx, "", event.Email, "email_not_found")
			return ErrEmailNotFound
		}
		return asInternal(err, "failed to retrieve user for login")
	}

	ok, err := VerifyPassword(event.Password, user.PasswordHash)
	if err != nil {
		h.logger.Error("stored password hash is unusable", "user_id", user.ID, "error", err)
		return asInternal(err, "failed to verify password")
	}

	if !ok {
		h.recordFailure(ctx, user.ID.String(), user.Email, "wrong_password")
		return ErrWrongPassword
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		UserID:    user.ID.String(),
		Email:     user.Email,
	})

	if event.OnResponse != nil {
		event.OnResponse(&LoginResponse{
			User:  user,
			Claim: NewAuthorizationClaim(user.ID),
		})
	}

	return nil
}

func (h *LoginHandler) recordFailure(ctx context.Context, userID, email, reason string) {
	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventLoginFailure,
		UserID:    userID,
		Email:     email,
		Metadata:  map[string]any{"reason": reason},
	})
}
