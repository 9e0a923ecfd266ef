package repository

import (
	"context"
	"embed"
	"fmt"

	"github.com/ahp-web/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations to db.
func Migrate(ctx context.Context, db *bun.DB, logger auth.Logger) error {
	goose.SetBaseFS(migrations)
	if logger != nil {
		goose.SetLogger(gooseLogger{logger})
	}

	name := DialectSQLite
	if db.Dialect().Name() == dialect.PG {
		name = DialectPostgres
	}

	if err := goose.SetDialect(string(name)); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "set migration dialect")
	}

	if err := goose.UpContext(ctx, db.DB, "migrations"); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "run migrations")
	}
	return nil
}

type gooseLogger struct {
	logger auth.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logger.Info(fmt.Sprintf(format, v...))
}

func (g gooseLogger) Fatalf(format string, v ...any) {
	g.logger.Error(fmt.Sprintf(format, v...))
}
