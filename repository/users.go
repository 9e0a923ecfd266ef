package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ahp-web/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

var UpdatePasswordHashSQL = `UPDATE "users"
SET
	"password_hash" = ?
WHERE
	"id" = ?
RETURNING *;`

// Users is the bun backed auth.UserStore.
type Users struct {
	repository.Repository[*auth.User]
	db *bun.DB
}

var _ auth.UserStore = (*Users)(nil)

func NewUsers(db *bun.DB) *Users {
	repo := repository.NewRepository[*auth.User](db, repository.ModelHandlers[*auth.User]{
		NewRecord: func() *auth.User { return &auth.User{} },
		GetID: func(u *auth.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *auth.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &Users{Repository: repo, db: db}
}

func (u *Users) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	record := &auth.User{}
	err := u.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", auth.NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}

func (u *Users) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	record, err := u.Repository.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}

func (u *Users) CreateUser(ctx context.Context, user *auth.User) (*auth.User, error) {
	if user == nil {
		return nil, goerrors.New("user is required", goerrors.CategoryBadInput)
	}

	user.Email = auth.NormalizeEmail(user.Email)
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	record, err := u.Repository.Create(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return record, nil
}

func (u *Users) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	res, err := u.Repository.Raw(ctx, UpdatePasswordHashSQL, passwordHash, id.String())
	if err != nil {
		return mapError(err)
	}

	if len(res) == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case repository.IsRecordNotFound(err), errors.Is(err, sql.ErrNoRows):
		return auth.ErrUserNotFound
	case isUniqueViolation(err):
		return auth.ErrUserAlreadyExists
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, "user store")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
