package auth

import (
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/ahp-web/auth/middleware/claimware"
)

const (
	// HeaderHXRedirect tells htmx clients where to navigate next.
	HeaderHXRedirect = "HX-Redirect"
	// HeaderHXRequest is set by htmx on every request it issues.
	HeaderHXRequest = "HX-Request"

	AuthorizationClaimKey = "auth_claim"
	PasswordResetClaimKey = "reset_claim"

	internalErrorMessage = "Internal Server Error, please try again later."
)

// RouteAuthenticator binds claims to fiber requests and responses.
type RouteAuthenticator struct {
	codec            *ClaimCodec
	cfg              Config
	Logger           Logger
	AuthErrorHandler fiber.ErrorHandler
	ErrorHandler     fiber.ErrorHandler
}

func NewHTTPAuthenticator(codec *ClaimCodec, cfg Config) *RouteAuthenticator {
	a := &RouteAuthenticator{
		codec:  codec,
		cfg:    cfg,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a
}

// WithLogger overrides the logger used by the authenticator.
func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// Codec exposes the codec used to sign cookies.
func (a *RouteAuthenticator) Codec() *ClaimCodec {
	return a.codec
}

// ProtectedRoute requires a valid session cookie and stores the claim
// under AuthorizationClaimKey.
func (a *RouteAuthenticator) ProtectedRoute() fiber.Handler {
	return claimware.New(claimware.Config[*AuthorizationClaim]{
		Extract: func(header string) (*AuthorizationClaim, error) {
			return AuthorizationClaimFromHeader(a.codec, header)
		},
		ContextKey:   AuthorizationClaimKey,
		ErrorHandler: a.handleAuthErr,
		Listeners: []func(*fiber.Ctx, *AuthorizationClaim) error{
			func(c *fiber.Ctx, claim *AuthorizationClaim) error {
				c.SetUserContext(WithClaimContext(c.UserContext(), claim))
				return nil
			},
		},
	})
}

// PasswordResetRoute requires a valid reset cookie and stores the claim
// under PasswordResetClaimKey.
func (a *RouteAuthenticator) PasswordResetRoute() fiber.Handler {
	return claimware.New(claimware.Config[*PasswordResetClaim]{
		Extract: func(header string) (*PasswordResetClaim, error) {
			return PasswordResetClaimFromHeader(a.codec, header)
		},
		ContextKey:   PasswordResetClaimKey,
		ErrorHandler: a.handleAuthErr,
	})
}

// IssueClaim writes the claim cookie and, when redirect is set, the
// HX-Redirect header.
func (a *RouteAuthenticator) IssueClaim(c *fiber.Ctx, claims Claims, redirect string) error {
	cookie, err := a.codec.Cookie(claims)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderSetCookie, cookie)
	if redirect != "" {
		c.Set(HeaderHXRedirect, redirect)
	}
	return nil
}

// Logout blanks the token cookie and sends the client home.
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) error {
	c.Set(fiber.HeaderSetCookie, ExpiredCookie(SessionCookieName, CookieOptions{Path: "/", HTTPOnly: true}))
	c.Set(HeaderHXRedirect, "/")
	return c.SendStatus(fiber.StatusOK)
}

// Handle routes errors returned by handlers to the right error handler.
func (a *RouteAuthenticator) Handle(c *fiber.Ctx, err error) error {
	if IsTokenRejection(err) {
		return a.handleAuthErr(c, err)
	}
	return a.ErrorHandler(c, err)
}

func (a *RouteAuthenticator) handleAuthErr(c *fiber.Ctx, err error) error {
	return a.AuthErrorHandler(c, err)
}

func (a *RouteAuthenticator) loginRoute() string {
	if a.cfg != nil && a.cfg.GetLoginRoute() != "" {
		return a.cfg.GetLoginRoute()
	}
	return "/auth/login"
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c *fiber.Ctx, err error) error {
	a.Logger.Debug("request rejected, redirecting to login", "path", c.Path(), "error", err)
	if c.Get(HeaderHXRequest) != "" {
		c.Set(HeaderHXRedirect, a.loginRoute())
	}
	return c.Redirect(a.loginRoute(), fiber.StatusSeeOther)
}

func (a *RouteAuthenticator) defaultErrHandler(c *fiber.Ctx, err error) error {
	status := HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("request failed", "path", c.Path(), "error", err)
		return c.Status(status).SendString(internalErrorMessage)
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return c.Status(status).SendString(richErr.Message)
	}
	return c.Status(status).SendString(err.Error())
}

// GetAuthorizationClaim returns the session claim stored by ProtectedRoute.
func GetAuthorizationClaim(c *fiber.Ctx) (*AuthorizationClaim, error) {
	claim, ok := claimware.FromContext[*AuthorizationClaim](c, AuthorizationClaimKey)
	if !ok || claim == nil {
		return nil, ErrTokenNotFound
	}
	return claim, nil
}

// GetPasswordResetClaim returns the reset claim stored by PasswordResetRoute.
func GetPasswordResetClaim(c *fiber.Ctx) (*PasswordResetClaim, error) {
	claim, ok := claimware.FromContext[*PasswordResetClaim](c, PasswordResetClaimKey)
	if !ok || claim == nil {
		return nil, ErrTokenNotFound
	}
	return claim, nil
}
