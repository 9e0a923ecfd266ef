package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the cookie that carries every signed claim.
const SessionCookieName = "token"

// Claims is a signed, time boxed payload that travels in a cookie.
// Implementations embed jwt.RegisteredClaims for the expiry and may
// implement Validate to reject structurally wrong payloads on decode.
type Claims interface {
	jwt.Claims
	CookieName() string
	CookieOptions() CookieOptions
}

// claimsPtr constrains decode targets to pointers of claim structs.
type claimsPtr[T any] interface {
	*T
	Claims
}
