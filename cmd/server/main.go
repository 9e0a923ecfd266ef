package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/ahp-web/auth"
	"github.com/ahp-web/auth/activitymap"
	"github.com/ahp-web/auth/config"
	"github.com/ahp-web/auth/logging"
	"github.com/ahp-web/auth/mailer"
	"github.com/ahp-web/auth/redisstore"
	"github.com/ahp-web/auth/repository"
)

type App struct {
	config   *config.AppConfig
	logger   *logging.ZapLogger
	db       *bun.DB
	redis    *redis.Client
	users    auth.UserStore
	mailer   auth.Mailer
	registry auth.ResetTokenRegistry
	srv      *fiber.App
}

func (a *App) GetLogger(name string) auth.Logger {
	return a.logger.Named(name)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	lgr, err := logging.NewZapLogger(cfg.LogLevel, cfg.IsDev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = lgr.Sync() }()

	app := &App{config: cfg, logger: lgr}
	ctx := context.Background()

	for _, step := range []func(context.Context, *App) error{
		WithPersistence,
		WithMailer,
		WithResetRegistry,
		WithHTTPServer,
	} {
		if err := step(ctx, app); err != nil {
			lgr.Error("startup failed", "error", err)
			os.Exit(1)
		}
	}

	go func() {
		lgr.Info("listening", "address", cfg.BindAddress)
		if err := app.srv.Listen(cfg.BindAddress); err != nil {
			lgr.Error("server stopped", "error", err)
		}
	}()

	sig := WaitExitSignal()
	lgr.Info("shutting down", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := app.srv.ShutdownWithContext(shutdownCtx); err != nil {
		lgr.Error("http shutdown", "error", err)
	}
	if app.redis != nil {
		_ = app.redis.Close()
	}
	if err := app.db.Close(); err != nil {
		lgr.Error("database close", "error", err)
	}
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := repository.Open(app.config.DatabaseURL)
	if err != nil {
		return err
	}

	if err := repository.Migrate(ctx, db, app.GetLogger("migrations")); err != nil {
		_ = db.Close()
		return err
	}

	app.db = db
	app.users = repository.NewUsers(db)
	return nil
}

func WithMailer(_ context.Context, app *App) error {
	mc := app.config.Mailer
	if !mc.Enabled() {
		app.logger.Warn("MAILER_HOST not set, emails will be logged")
		app.mailer = mailer.NewLogMailer(app.config.FullSenderName(), mc.SenderEmail, app.GetLogger("mailer"))
		return nil
	}

	app.mailer = mailer.NewSMTPMailer(mailer.Options{
		Host:        mc.Host,
		Port:        mc.Port,
		Username:    mc.Username,
		Password:    mc.Password,
		SenderEmail: mc.SenderEmail,
		SenderName:  app.config.FullSenderName(),
	}).WithLogger(app.GetLogger("mailer"))
	return nil
}

func WithResetRegistry(ctx context.Context, app *App) error {
	rc := app.config.Redis
	if !rc.Enabled() {
		app.logger.Warn("REDIS_ADDR not set, reset tokens are not single use")
		return nil
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	registry := redisstore.NewResetTokenRegistry(app.redis)
	if err := registry.Ping(ctx); err != nil {
		return err
	}

	app.registry = registry
	return nil
}

func WithHTTPServer(_ context.Context, app *App) error {
	codec, err := auth.NewClaimCodec(
		[]byte(app.config.GetSigningKey()),
		auth.WithCodecLogger(app.GetLogger("auth:codec")),
	)
	if err != nil {
		return err
	}

	app.srv = fiber.New(fiber.Config{
		AppName:               app.config.AppName,
		DisableStartupMessage: true,
	})
	app.srv.Use(logging.RequestLogger(app.logger.Zap().Named("http")))

	auther := auth.NewHTTPAuthenticator(codec, app.config).
		WithLogger(app.GetLogger("auth:http"))

	auth.RegisterAuthRoutes(app.srv,
		auth.WithUserStore(app.users),
		auth.WithMailer(app.mailer),
		auth.WithResetTokenRegistry(app.registry),
		auth.WithActivitySink(activitymap.LogSink(app.GetLogger("activity"))),
		auth.WithAuther(auther),
		auth.WithAuthConfig(app.config),
		auth.WithHashidUserIDs(app.config.HashidUserIDs),
		auth.WithDebug(app.config.IsDev),
		auth.WithControllerLogger(app.GetLogger("auth:ctrl")),
	)

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
