package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// ClaimCodec signs and verifies claims with a single HS256 secret. The
// secret is fixed at construction and the codec is safe for concurrent
// use.
type ClaimCodec struct {
	signingKey []byte
	now        func() time.Time
	logger     Logger
}

// CodecOption configures a ClaimCodec
type CodecOption func(*ClaimCodec)

// WithCodecLogger sets the logger used to report rejected tokens.
func WithCodecLogger(logger Logger) CodecOption {
	return func(c *ClaimCodec) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCodecClock overrides the clock used when validating expiry.
func WithCodecClock(now func() time.Time) CodecOption {
	return func(c *ClaimCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClaimCodec creates a codec for the given secret. An empty secret is
// rejected so a misconfigured process fails at startup.
func NewClaimCodec(signingKey []byte, opts ...CodecOption) (*ClaimCodec, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	key := make([]byte, len(signingKey))
	copy(key, signingKey)

	c := &ClaimCodec{
		signingKey: key,
		now:        time.Now,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c, nil
}

// keyBinder is implemented by claims that derive signed fields from the
// codec key.
type keyBinder interface {
	bindKey(key []byte)
}

// Encode signs claims into a compact JWT.
func (c *ClaimCodec) Encode(claims Claims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	if kb, ok := claims.(keyBinder); ok {
		kb.bindKey(c.signingKey)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Cookie signs claims and renders the Set-Cookie header value.
func (c *ClaimCodec) Cookie(claims Claims) (string, error) {
	token, err := c.Encode(claims)
	if err != nil {
		return "", err
	}
	return BuildCookie(claims.CookieName(), token, claims.CookieOptions()), nil
}

// Decode verifies token and reconstructs the claim it carries. Every
// failure, including an expired or missing exp, is ErrInvalidToken.
func Decode[T any, P claimsPtr[T]](c *ClaimCodec, token string) (P, error) {
	claims := P(new(T))

	parsed, err := jwt.ParseWithClaims(token, claims, c.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			c.logger.Debug("claim rejected", "reason", "expired")
		} else {
			c.logger.Debug("claim rejected", "error", err)
		}
		return nil, ErrInvalidToken
	}

	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	if kb, ok := any(claims).(keyBinder); ok {
		kb.bindKey(c.signingKey)
	}

	return claims, nil
}

func (c *ClaimCodec) keyFunc(t *jwt.Token) (any, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return c.signingKey, nil
}
