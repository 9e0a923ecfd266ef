package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// RegisterAuthRoutes mounts the auth API and the protected dashboard on app.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	api := app.Group(controller.Routes.API)
	api.Post(controller.Routes.Register, controller.Register).Name("auth.register")
	api.Post(controller.Routes.Login, controller.Login).Name("auth.login")
	api.Post(controller.Routes.Logout, controller.Logout).Name("auth.logout")
	api.Post(controller.Routes.EmailCode, controller.EmailCode).Name("auth.email_code")
	api.Post(controller.Routes.CodeLogin,
		controller.Auther.PasswordResetRoute(),
		controller.CodeLogin,
	).Name("auth.code_login")
	api.Post(controller.Routes.ChangePassword,
		controller.Auther.PasswordResetRoute(),
		controller.ChangePassword,
	).Name("auth.change_password")

	app.Get(controller.Routes.Dashboard,
		controller.Auther.ProtectedRoute(),
		controller.Dashboard,
	).Name("dashboard")

	return controller
}

type AuthControllerRoutes struct {
	API            string
	Register       string
	Login          string
	Logout         string
	EmailCode      string
	CodeLogin      string
	ChangePassword string
	Dashboard      string
}

type AuthController struct {
	Debug     bool
	UseHashid bool
	Logger    Logger
	Users     UserStore
	Mailer    Mailer
	Registry  ResetTokenRegistry
	Activity  ActivitySink
	Config    Config
	Auther    *RouteAuthenticator
	Routes    *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		if logger != nil {
			ac.Logger = logger
		}
		return ac
	}
}

func WithUserStore(users UserStore) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Users = users
		return ac
	}
}

func WithMailer(mailer Mailer) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Mailer = mailer
		return ac
	}
}

func WithResetTokenRegistry(registry ResetTokenRegistry) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Registry = registry
		return ac
	}
}

func WithActivitySink(sink ActivitySink) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Activity = normalizeActivitySink(sink)
		return ac
	}
}

func WithAuthConfig(cfg Config) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Config = cfg
		return ac
	}
}

func WithAuther(auther *RouteAuthenticator) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Auther = auther
		return ac
	}
}

func WithControllerRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		if routes != nil {
			ac.Routes = routes
		}
		return ac
	}
}

func WithDebug(debug bool) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Debug = debug
		return ac
	}
}

func WithHashidUserIDs(enabled bool) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.UseHashid = enabled
		return ac
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:   defLogger{},
		Activity: noopActivitySink{},
		Routes: &AuthControllerRoutes{
			API:            "/api/auth",
			Register:       "/register",
			Login:          "/login",
			Logout:         "/logout",
			EmailCode:      "/email-code",
			CodeLogin:      "/code-login",
			ChangePassword: "/change-password",
			Dashboard:      "/dashboard",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Users == nil {
		panic("Missing UserStore in auth controller...")
	}

	if c.Mailer == nil {
		panic("Missing Mailer in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

func (a *AuthController) successRedirect() string {
	if a.Config != nil && a.Config.GetSuccessRedirect() != "" {
		return a.Config.GetSuccessRedirect()
	}
	return "/dashboard"
}

func (a *AuthController) loginRoute() string {
	return a.Auther.loginRoute()
}

// RegistrationPayload is the form payload
type RegistrationPayload struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (a *AuthController) Register(c *fiber.Ctx) error {
	payload := new(RegistrationPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("register parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).SendString("Failed to parse form")
	}

	var resp *RegisterUserResponse
	handler := NewRegisterUserHandler(a.Users).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	err := handler.Execute(c.UserContext(), RegisterUserMessage{
		Name:       payload.Name,
		Email:      payload.Email,
		Password:   payload.Password,
		UseHashid:  a.UseHashid,
		OnResponse: func(r *RegisterUserResponse) { resp = r },
	})
	if err != nil {
		return a.Auther.Handle(c, err)
	}

	if a.Debug {
		a.Logger.Debug("user registered", "user", print.MaybePrettyJSON(resp.User))
	}

	if err := a.Auther.IssueClaim(c, resp.Claim, a.successRedirect()); err != nil {
		return a.Auther.Handle(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

// LoginPayload is the form payload
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("login parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).SendString("Failed to parse form")
	}

	var resp *LoginResponse
	handler := NewLoginHandler(a.Users).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	err := handler.Execute(c.UserContext(), LoginMessage{
		Email:      payload.Email,
		Password:   payload.Password,
		OnResponse: func(r *LoginResponse) { resp = r },
	})
	if err != nil {
		return a.Auther.Handle(c, err)
	}

	if a.Debug {
		a.Logger.Debug("user logged in", "user", print.MaybePrettyJSON(resp.User))
	}

	if err := a.Auther.IssueClaim(c, resp.Claim, a.successRedirect()); err != nil {
		return a.Auther.Handle(c, err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (a *AuthController) Logout(c *fiber.Ctx) error {
	return a.Auther.Logout(c)
}

// EmailCodePayload is the form payload
type EmailCodePayload struct {
	Email string `form:"email" json:"email"`
}

func (a *AuthController) EmailCode(c *fiber.Ctx) error {
	payload := new(EmailCodePayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("email code parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).SendString("Failed to parse form")
	}

	var resp *RequestPasswordResetResponse
	handler := NewRequestPasswordResetHandler(a.Users, a.Mailer).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	err := handler.Execute(c.UserContext(), RequestPasswordResetMessage{
		Email:      payload.Email,
		OnResponse: func(r *RequestPasswordResetResponse) { resp = r },
	})
	if err != nil {
		return a.Auther.Handle(c, err)
	}

	if err := a.Auther.IssueClaim(c, resp.Claim, ""); err != nil {
		return a.Auther.Handle(c, err)
	}

	return c.JSON(fiber.Map{
		"email":          resp.Claim.Email,
		"expire_minutes": resp.ExpireMinutes,
	})
}

// CodeLoginPayload is the form payload
type CodeLoginPayload struct {
	Code string `form:"code" json:"code"`
}

func (a *AuthController) CodeLogin(c *fiber.Ctx) error {
	claim, err := GetPasswordResetClaim(c)
	if err != nil {
		return a.Auther.Handle(c, err)
	}

	payload := new(CodeLoginPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("code login parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).SendString("Failed to parse form")
	}

	var resp *VerifyResetCodeResponse
	handler := NewVerifyResetCodeHandler().
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	err = handler.Execute(c.UserContext(), VerifyResetCodeMessage{
		Claim:      claim,
		Code:       strings.TrimSpace(payload.Code),
		OnResponse: func(r *VerifyResetCodeResponse) { resp = r },
	})
	if err != nil {
		return a.Auther.Handle(c, err)
	}

	if err := a.Auther.IssueClaim(c, resp.Claim, ""); err != nil {
		return a.Auther.Handle(c, err)
	}

	return c.JSON(fiber.Map{"authorized": true})
}

// ChangePasswordPayload is the form payload
type ChangePasswordPayload struct {
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

func (a *AuthController) ChangePassword(c *fiber.Ctx) error {
	claim, err := GetPasswordResetClaim(c)
	if err != nil {
		return a.Auther.Handle(c, err)
	}

	payload := new(ChangePasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Debug("change password parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).SendString("Failed to parse form")
	}

	handler := NewChangePasswordHandler(a.Users).
		WithResetTokenRegistry(a.Registry).
		WithActivitySink(a.Activity).
		WithLogger(a.Logger)

	err = handler.Execute(c.UserContext(), ChangePasswordMessage{
		Claim:           claim,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrResetNotAuthorized), errors.Is(err, ErrEmailNotFound):
		c.Set(HeaderHXRedirect, "/")
		return c.SendStatus(fiber.StatusUnauthorized)
	default:
		return a.Auther.Handle(c, err)
	}

	c.Set(fiber.HeaderSetCookie, ExpiredCookie(claim.CookieName(), claim.CookieOptions()))
	c.Set(HeaderHXRedirect, a.loginRoute())
	return c.SendStatus(fiber.StatusOK)
}

func (a *AuthController) Dashboard(c *fiber.Ctx) error {
	claim, err := GetAuthorizationClaim(c)
	if err != nil {
		return a.Auther.Handle(c, err)
	}

	user, err := a.Users.GetUserByID(c.UserContext(), claim.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			c.Set(fiber.HeaderLocation, a.loginRoute())
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return a.Auther.Handle(c, err)
	}

	return c.JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}
