package config

import (
	"errors"
	"os"
	"strings"

	env "github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"

	"github.com/ahp-web/auth"
)

// AppConfig is read from the environment, after an optional .env file.
type AppConfig struct {
	AppName     string `env:"APP_NAME" envDefault:"AHP"`
	BindAddress string `env:"BIND_ADDRESS" envDefault:":3000"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:ahp.db?cache=shared"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	IsDev       bool   `env:"DEV" envDefault:"false"`

	// JWTSecret signs every claim cookie. Startup aborts without it.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	LoginRoute      string `env:"LOGIN_ROUTE" envDefault:"/auth/login"`
	SuccessRedirect string `env:"SUCCESS_REDIRECT" envDefault:"/dashboard"`
	HashidUserIDs   bool   `env:"HASHID_USER_IDS" envDefault:"false"`

	Mailer MailerConfig `envPrefix:"MAILER_"`
	Redis  RedisConfig  `envPrefix:"REDIS_"`
}

type MailerConfig struct {
	Host        string `env:"HOST"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	SenderEmail string `env:"SENDER_EMAIL" envDefault:"no-reply@localhost"`
	SenderName  string `env:"SENDER_NAME" envDefault:"Support"`
}

// Enabled reports whether an SMTP relay is configured.
func (m MailerConfig) Enabled() bool {
	return strings.TrimSpace(m.Host) != ""
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// Enabled reports whether the reset token registry should be wired.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

var _ auth.Config = (*AppConfig)(nil)

func (c *AppConfig) GetSigningKey() string      { return c.JWTSecret }
func (c *AppConfig) GetLoginRoute() string      { return c.LoginRoute }
func (c *AppConfig) GetSuccessRedirect() string { return c.SuccessRedirect }

// FullSenderName is the From display name, "<app> - <sender>".
func (c *AppConfig) FullSenderName() string {
	switch {
	case c.AppName == "":
		return c.Mailer.SenderName
	case c.Mailer.SenderName == "":
		return c.AppName
	}
	return c.AppName + " - " + c.Mailer.SenderName
}

// Load reads .env when present and parses the process environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "load .env file")
		}
	}
	return Parse(env.Options{})
}

// Parse builds the config from opts, tests pass an Environment map.
func Parse(opts env.Options) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "parse config").
			WithTextCode("INVALID_CONFIG")
	}
	return cfg, nil
}
