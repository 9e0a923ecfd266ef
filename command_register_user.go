package auth

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

type RegisterUserMessage struct {
	Name       string `json:"name" form:"name"`
	Email      string `json:"email" form:"email"`
	Password   string `json:"password" form:"password"`
	UseHashid  bool   `json:"-" form:"-"`
	OnResponse func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&e.Email, validation.Required, validation.Length(3, 100), is.Email),
		validation.Field(&e.Password, validation.Required, validation.By(ValidatePasswordStrength)),
	)
}

type RegisterUserResponse struct {
	User  *User
	Claim *AuthorizationClaim
}

type RegisterUserHandler struct {
	users    UserStore
	activity ActivitySink
	logger   Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(users UserStore) *RegisterUserHandler {
	return &RegisterUserHandler{
		users:    users,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit registration events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	event.Email = NormalizeEmail(event.Email)

	if err := event.Validate(); err != nil {
		return validationFailed(err, "invalid registration")
	}

	if _, err := h.users.GetUserByEmail(ctx, event.Email); err == nil {
		return ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return asInternal(err, "failed to check existing user")
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		return asInternal(err, "failed to hash password")
	}

	user := &User{
		ID:           uuid.New(),
		Name:         event.Name,
		Email:        event.Email,
		PasswordHash: hash,
	}

	if event.UseHashid {
		if id, err := hashid.NewUUID(event.Email); err == nil {
			user.ID = id
		}
	}

	user, err = h.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, ErrUserAlreadyExists) {
			return ErrEmailAlreadyExists
		}
		return asInternal(err, "could not create user")
	}

	h.logger.Info("user registered", "user_id", user.ID)

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventUserRegistered,
		UserID:    user.ID.String(),
		Email:     user.Email,
	})

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{
			User:  user,
			Claim: NewAuthorizationClaim(user.ID),
		})
	}

	return nil
}
