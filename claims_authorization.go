package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AuthorizationClaimTTL is how long a session stays valid.
const AuthorizationClaimTTL = 168 * time.Hour

var errNotSessionClaim = errors.New("token is not a session claim")

// AuthorizationClaim identifies a logged in user.
type AuthorizationClaim struct {
	UserID         uuid.UUID `json:"user_id"`
	IsSessionClaim bool      `json:"is_session_claim"`
	jwt.RegisteredClaims
}

var _ Claims = (*AuthorizationClaim)(nil)

// NewAuthorizationClaim creates a session claim for userID expiring
// AuthorizationClaimTTL from now.
func NewAuthorizationClaim(userID uuid.UUID) *AuthorizationClaim {
	now := time.Now()
	return &AuthorizationClaim{
		UserID:         userID,
		IsSessionClaim: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AuthorizationClaimTTL)),
		},
	}
}

// Expires returns the expiration time
func (c *AuthorizationClaim) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (c *AuthorizationClaim) CookieName() string { return SessionCookieName }

func (c *AuthorizationClaim) CookieOptions() CookieOptions {
	return CookieOptions{Path: "/", HTTPOnly: true}
}

// Validate is run by the parser after signature and expiry checks.
func (c *AuthorizationClaim) Validate() error {
	if !c.IsSessionClaim || c.UserID == uuid.Nil {
		return errNotSessionClaim
	}
	return nil
}

// Token signs the claim with codec.
func (c *AuthorizationClaim) Token(codec *ClaimCodec) (string, error) {
	return codec.Encode(c)
}

// Cookie signs the claim and renders its Set-Cookie value.
func (c *AuthorizationClaim) Cookie(codec *ClaimCodec) (string, error) {
	return codec.Cookie(c)
}

// AuthorizationClaimFromToken decodes a session token.
func AuthorizationClaimFromToken(codec *ClaimCodec, token string) (*AuthorizationClaim, error) {
	return Decode[AuthorizationClaim](codec, token)
}
