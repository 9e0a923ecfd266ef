package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// PasswordResetClaimTTL is how long a one-time code stays usable.
	PasswordResetClaimTTL = 15 * time.Minute
	// ResetCodeLength is the number of characters in a one-time code.
	ResetCodeLength = 6

	resetCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var errNotResetClaim = errors.New("token is not a password reset claim")

// PasswordResetClaim drives the emailed code flow. It is issued with
// Authorized set to false and re-issued with Authorized set to true once
// the user proves they received the code.
//
// Code is only set on the claim minted for the email and is never
// serialized. The token carries CodeHash, an HMAC of the code under the
// codec key, so holding the cookie does not reveal the code.
type PasswordResetClaim struct {
	Email      string `json:"email"`
	Code       string `json:"-"`
	CodeHash   string `json:"code_hash"`
	Authorized bool   `json:"authorized"`
	jwt.RegisteredClaims

	codeKey []byte
}

var _ Claims = (*PasswordResetClaim)(nil)

// NewPasswordResetClaim creates an unauthorized reset claim for email
// with a fresh random code.
func NewPasswordResetClaim(email string) (*PasswordResetClaim, error) {
	code, err := GenerateResetCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &PasswordResetClaim{
		Email: email,
		Code:  code,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(PasswordResetClaimTTL)),
		},
	}, nil
}

// GenerateResetCode returns ResetCodeLength characters drawn uniformly
// from A-Z and 0-9.
func GenerateResetCode() (string, error) {
	max := big.NewInt(int64(len(resetCodeAlphabet)))
	code := make([]byte, ResetCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate reset code: %w", err)
		}
		code[i] = resetCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

// Authorize marks the claim as authorized when code matches, ignoring
// case. A freshly minted claim compares against Code, a decoded one
// against CodeHash. A mismatch leaves the claim untouched.
func (c *PasswordResetClaim) Authorize(code string) bool {
	submitted := strings.ToUpper(code)
	if !isResetCode(submitted) {
		return false
	}

	var ok bool
	switch {
	case c.Code != "":
		ok = hmac.Equal([]byte(submitted), []byte(c.Code))
	case c.CodeHash != "" && len(c.codeKey) > 0:
		ok = hmac.Equal([]byte(resetCodeHash(c.codeKey, submitted)), []byte(c.CodeHash))
	}

	if !ok {
		return false
	}

	c.Authorized = true
	return true
}

// bindKey is called by the codec on encode and decode. A claim that still
// knows its plaintext code gets its CodeHash derived here.
func (c *PasswordResetClaim) bindKey(key []byte) {
	c.codeKey = key
	if c.Code != "" {
		c.CodeHash = resetCodeHash(key, c.Code)
	}
}

func resetCodeHash(key []byte, code string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(strings.ToUpper(code)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Expires returns the expiration time
func (c *PasswordResetClaim) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (c *PasswordResetClaim) CookieName() string { return SessionCookieName }

func (c *PasswordResetClaim) CookieOptions() CookieOptions {
	return CookieOptions{Path: "/", HTTPOnly: true, Secure: true}
}

// Validate is run by the parser after signature and expiry checks.
func (c *PasswordResetClaim) Validate() error {
	if c.Email == "" || len(c.CodeHash) != sha256.Size*2 {
		return errNotResetClaim
	}
	return nil
}

// Token signs the claim with codec.
func (c *PasswordResetClaim) Token(codec *ClaimCodec) (string, error) {
	return codec.Encode(c)
}

// Cookie signs the claim and renders its Set-Cookie value.
func (c *PasswordResetClaim) Cookie(codec *ClaimCodec) (string, error) {
	return codec.Cookie(c)
}

// PasswordResetClaimFromToken decodes a reset token.
func PasswordResetClaimFromToken(codec *ClaimCodec, token string) (*PasswordResetClaim, error) {
	return Decode[PasswordResetClaim](codec, token)
}

func isResetCode(code string) bool {
	if len(code) != ResetCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(resetCodeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}
