package claimware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ErrMissingOrInvalidClaim is the default rejection reported to clients.
var ErrMissingOrInvalidClaim = errors.New("missing or invalid claim")

// Extractor turns the raw Cookie request header into a claim. It mirrors
// the auth package extractors so this package stays free of import cycles.
type Extractor[T any] func(cookieHeader string) (T, error)

type Config[T any] struct {
	// Filter skips the middleware when it returns true.
	Filter func(*fiber.Ctx) bool
	// Extract is required.
	Extract Extractor[T]
	// ContextKey is the Locals key holding the claim, "claim" by default.
	ContextKey string
	// Optional runs after the claim is stored.
	SuccessHandler fiber.Handler
	// ErrorHandler receives the extractor error.
	ErrorHandler fiber.ErrorHandler
	// Listeners run after a successful extraction and may reject the request.
	Listeners []func(c *fiber.Ctx, claim T) error
}

// New creates a fiber handler that requires a valid claim.
func New[T any](config Config[T]) fiber.Handler {
	cfg := configDefault(config)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		claim, err := cfg.Extract(c.Get(fiber.HeaderCookie))
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		for _, listener := range cfg.Listeners {
			if listener == nil {
				continue
			}
			if err := listener(c, claim); err != nil {
				return cfg.ErrorHandler(c, err)
			}
		}

		c.Locals(cfg.ContextKey, claim)

		return cfg.SuccessHandler(c)
	}
}

// FromContext returns the claim stored under key.
func FromContext[T any](c *fiber.Ctx, key string) (T, bool) {
	claim, ok := c.Locals(key).(T)
	return claim, ok
}

func configDefault[T any](cfg Config[T]) Config[T] {
	if cfg.Extract == nil {
		panic("AUTH: claim middleware configuration: Extract is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "claim"
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).SendString(ErrMissingOrInvalidClaim.Error())
		}
	}

	return cfg
}
