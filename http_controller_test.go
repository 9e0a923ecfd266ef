package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahp-web/auth"
)

var emailedCodePattern = regexp.MustCompile(`<strong>([A-Z0-9]{6})</strong>`)

type controllerFixture struct {
	app    *fiber.App
	store  *memUserStore
	mailer *captureMailer
	codec  *auth.ClaimCodec
}

func newControllerFixture(t *testing.T, users ...*auth.User) *controllerFixture {
	t.Helper()

	cfg := MockConfig{LoginRoute: "/auth/login", SuccessRedirect: "/dashboard"}
	f := &controllerFixture{
		app:    fiber.New(),
		store:  newMemUserStore(users...),
		mailer: &captureMailer{},
		codec:  newTestCodec(t),
	}

	auther := auth.NewHTTPAuthenticator(f.codec, cfg).WithLogger(testLogger{})
	auth.RegisterAuthRoutes(f.app,
		auth.WithUserStore(f.store),
		auth.WithMailer(f.mailer),
		auth.WithAuther(auther),
		auth.WithAuthConfig(cfg),
		auth.WithControllerLogger(testLogger{}),
		auth.WithDebug(true),
	)
	return f
}

func (f *controllerFixture) post(t *testing.T, path string, form url.Values, cookie string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", fiber.MIMEApplicationForm)
	if cookie != "" {
		req.Header.Set("Cookie", "token="+cookie)
	}
	return sendRequest(t, f.app, req)
}

func (f *controllerFixture) get(t *testing.T, path, cookie string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.Header.Set("Cookie", "token="+cookie)
	}
	return sendRequest(t, f.app, req)
}

func TestAuthController_RegisterAndDashboard(t *testing.T) {
	f := newControllerFixture(t)

	resp, _ := f.post(t, "/api/auth/register", url.Values{
		"name":     {"Jane"},
		"email":    {"Jane@Example.com"},
		"password": {"Password123"},
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get(auth.HeaderHXRedirect))

	cookie := findCookie(resp, "token")
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	resp, body := f.get(t, "/dashboard", cookie.Value)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &user))
	assert.Equal(t, "Jane", user["name"])
	assert.Equal(t, "jane@example.com", user["email"])
	assert.NotContains(t, body, "argon2id")

	t.Run("duplicate email", func(t *testing.T) {
		resp, _ := f.post(t, "/api/auth/register", url.Values{
			"name":     {"Other"},
			"email":    {"jane@example.com"},
			"password": {"Password123"},
		}, "")
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
		assert.Nil(t, findCookie(resp, "token"))
	})

	t.Run("invalid payload", func(t *testing.T) {
		resp, _ := f.post(t, "/api/auth/register", url.Values{
			"name":     {"Jane"},
			"email":    {"not-an-email"},
			"password": {"short"},
		}, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestAuthController_Dashboard(t *testing.T) {
	user := mustUser(t, "Jane", "jane@example.com", "Password123")
	f := newControllerFixture(t, user)

	t.Run("no cookie", func(t *testing.T) {
		resp, _ := f.get(t, "/dashboard", "")
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/auth/login", resp.Header.Get("Location"))
	})

	t.Run("tampered cookie", func(t *testing.T) {
		token, err := auth.NewAuthorizationClaim(user.ID).Token(f.codec)
		require.NoError(t, err)

		resp, _ := f.get(t, "/dashboard", token+"x")
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	})

	t.Run("unknown user", func(t *testing.T) {
		token, err := auth.NewAuthorizationClaim(uuid.New()).Token(f.codec)
		require.NoError(t, err)

		resp, _ := f.get(t, "/dashboard", token)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "/auth/login", resp.Header.Get("Location"))
	})
}

func TestAuthController_Login(t *testing.T) {
	f := newControllerFixture(t, mustUser(t, "Jane", "jane@example.com", "Password123"))

	t.Run("success", func(t *testing.T) {
		resp, _ := f.post(t, "/api/auth/login", url.Values{
			"email":    {"jane@example.com"},
			"password": {"Password123"},
		}, "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "/dashboard", resp.Header.Get(auth.HeaderHXRedirect))
		assert.NotNil(t, findCookie(resp, "token"))
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := f.post(t, "/api/auth/login", url.Values{
			"email":    {"jane@example.com"},
			"password": {"Password124"},
		}, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "wrong password", body)
		assert.Nil(t, findCookie(resp, "token"))
	})

	t.Run("unknown email", func(t *testing.T) {
		resp, _ := f.post(t, "/api/auth/login", url.Values{
			"email":    {"nobody@example.com"},
			"password": {"Password123"},
		}, "")
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("logout", func(t *testing.T) {
		resp, _ := f.post(t, "/api/auth/logout", nil, "")
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get(auth.HeaderHXRedirect))

		cookie := findCookie(resp, "token")
		require.NotNil(t, cookie)
		assert.Empty(t, cookie.Value)
	})
}

func TestAuthController_PasswordResetFlow(t *testing.T) {
	f := newControllerFixture(t, mustUser(t, "Jane", "jane@example.com", "Password123"))

	resp, body := f.post(t, "/api/auth/email-code", url.Values{"email": {"jane@example.com"}}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"expire_minutes":15`)

	pending := findCookie(resp, "token")
	require.NotNil(t, pending)
	assert.True(t, pending.Secure)

	claim, err := auth.PasswordResetClaimFromToken(f.codec, pending.Value)
	require.NoError(t, err)
	assert.False(t, claim.Authorized)
	assert.Empty(t, claim.Code)

	sent := f.mailer.last()
	require.NotNil(t, sent)
	assert.Equal(t, "jane@example.com", sent.ToEmail)

	match := emailedCodePattern.FindStringSubmatch(sent.Body)
	require.Len(t, match, 2)
	code := match[1]

	t.Run("unauthorized claim cannot change the password", func(t *testing.T) {
		resp, _ := f.post(t, "/api/auth/change-password", url.Values{
			"password":         {"NewPassword1"},
			"confirm_password": {"NewPassword1"},
		}, pending.Value)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "/", resp.Header.Get(auth.HeaderHXRedirect))
	})

	t.Run("session cookie is not a reset claim", func(t *testing.T) {
		session, err := auth.NewAuthorizationClaim(uuid.New()).Token(f.codec)
		require.NoError(t, err)

		resp, _ := f.post(t, "/api/auth/code-login", url.Values{"code": {code}}, session)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	})

	t.Run("wrong code", func(t *testing.T) {
		wrong := "AAAAAA"
		if code == wrong {
			wrong = "BBBBBB"
		}
		resp, _ := f.post(t, "/api/auth/code-login", url.Values{"code": {wrong}}, pending.Value)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Nil(t, findCookie(resp, "token"))
	})

	resp, _ = f.post(t, "/api/auth/code-login", url.Values{"code": {strings.ToLower(code)}}, pending.Value)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	authorized := findCookie(resp, "token")
	require.NotNil(t, authorized)

	verified, err := auth.PasswordResetClaimFromToken(f.codec, authorized.Value)
	require.NoError(t, err)
	assert.True(t, verified.Authorized)

	t.Run("confirmation must match", func(t *testing.T) {
		resp, _ := f.post(t, "/api/auth/change-password", url.Values{
			"password":         {"NewPassword1"},
			"confirm_password": {"NewPassword2"},
		}, authorized.Value)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	resp, _ = f.post(t, "/api/auth/change-password", url.Values{
		"password":         {"NewPassword1"},
		"confirm_password": {"NewPassword1"},
	}, authorized.Value)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "/auth/login", resp.Header.Get(auth.HeaderHXRedirect))

	cleared := findCookie(resp, "token")
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	assert.Equal(t, -1, cleared.MaxAge, "Max-Age=0 deletes the cookie")

	resp, _ = f.post(t, "/api/auth/login", url.Values{
		"email":    {"jane@example.com"},
		"password": {"NewPassword1"},
	}, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = f.post(t, "/api/auth/login", url.Values{
		"email":    {"jane@example.com"},
		"password": {"Password123"},
	}, "")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthController_EmailCodeUnknownEmail(t *testing.T) {
	f := newControllerFixture(t)

	resp, _ := f.post(t, "/api/auth/email-code", url.Values{"email": {"nobody@example.com"}}, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Nil(t, findCookie(resp, "token"))
	assert.Nil(t, f.mailer.last())
}

func TestNewAuthControllerRequiresDependencies(t *testing.T) {
	assert.Panics(t, func() { auth.NewAuthController() })
	assert.Panics(t, func() {
		auth.NewAuthController(auth.WithUserStore(newMemUserStore()), auth.WithMailer(&captureMailer{}))
	})
}
