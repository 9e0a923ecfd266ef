package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimFromContext(t *testing.T) {
	claim := NewAuthorizationClaim(uuid.New())

	tests := []struct {
		name     string
		setupCtx func() context.Context
		wantOK   bool
	}{
		{
			name: "should return claim when present in context",
			setupCtx: func() context.Context {
				return WithClaimContext(context.Background(), claim)
			},
			wantOK: true,
		},
		{
			name: "should return false when no claim in context",
			setupCtx: func() context.Context {
				return context.Background()
			},
		},
		{
			name: "should return false when context has wrong type",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), claimCtxKey, "not-a-claim")
			},
		},
		{
			name: "should return false for a nil claim",
			setupCtx: func() context.Context {
				return WithClaimContext(context.Background(), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClaimFromContext(tt.setupCtx())
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, claim.UserID, got.UserID)
			}
		})
	}
}

func TestProtectedRouteSetsUserContext(t *testing.T) {
	codec, err := NewClaimCodec([]byte("ctx-test-secret"))
	require.NoError(t, err)

	auther := NewHTTPAuthenticator(codec, nil)

	userID := uuid.New()
	token, err := NewAuthorizationClaim(userID).Token(codec)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", auther.ProtectedRoute(), func(c *fiber.Ctx) error {
		claim, ok := ClaimFromContext(c.UserContext())
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		return c.SendString(claim.UserID.String())
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Cookie", "token="+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
