package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type VerifyResetCodeMessage struct {
	Claim      *PasswordResetClaim
	Code       string `json:"code" form:"code"`
	OnResponse func(resp *VerifyResetCodeResponse)
}

func (e VerifyResetCodeMessage) Type() string { return "user.password_reset.verify" }

type VerifyResetCodeResponse struct {
	Claim *PasswordResetClaim
}

// VerifyResetCodeHandler authorizes a reset claim when the submitted code
// matches the one that was emailed.
type VerifyResetCodeHandler struct {
	activity ActivitySink
	logger   Logger
}

// NewVerifyResetCodeHandler creates a handler with sane defaults.
func NewVerifyResetCodeHandler() *VerifyResetCodeHandler {
	return &VerifyResetCodeHandler{
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit password reset events.
func (h *VerifyResetCodeHandler) WithActivitySink(sink ActivitySink) *VerifyResetCodeHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *VerifyResetCodeHandler) WithLogger(logger Logger) *VerifyResetCodeHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyResetCodeHandler) Execute(ctx context.Context, event VerifyResetCodeMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during reset code verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyResetCodeHandler) execute(ctx context.Context, event VerifyResetCodeMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Claim == nil {
		return ErrTokenNotFound
	}

	// work on a copy, the caller's claim stays as decoded
	claim := *event.Claim

	if !claim.Authorize(event.Code) {
		recordActivity(ctx, h.activity, h.logger, ActivityEvent{
			EventType: ActivityEventPasswordResetFailure,
			Email:     claim.Email,
			Metadata:  map[string]any{"reason": "wrong_code"},
		})
		return ErrWrongCode
	}

	recordActivity(ctx, h.activity, h.logger, ActivityEvent{
		EventType: ActivityEventPasswordResetVerified,
		Email:     claim.Email,
	})

	if event.OnResponse != nil {
		event.OnResponse(&VerifyResetCodeResponse{Claim: &claim})
	}

	return nil
}
