package mailer_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/ahp-web/auth"
)

type singleUserStore struct {
	user *auth.User
}

func (s *singleUserStore) GetUserByEmail(_ context.Context, email string) (*auth.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, auth.ErrUserNotFound
}

func (s *singleUserStore) GetUserByID(context.Context, uuid.UUID) (*auth.User, error) {
	return nil, auth.ErrUserNotFound
}

func (s *singleUserStore) CreateUser(context.Context, *auth.User) (*auth.User, error) {
	return nil, auth.ErrUserAlreadyExists
}

func (s *singleUserStore) UpdatePasswordHash(context.Context, uuid.UUID, string) error {
	return auth.ErrUserNotFound
}
