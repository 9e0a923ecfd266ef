package redisstore

import (
	"context"
	"time"

	"github.com/ahp-web/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

const DefaultKeyPrefix = "auth:reset:used:"

// ResetTokenRegistry marks password reset token ids as spent. Keys expire
// with the token so the keyspace does not grow.
type ResetTokenRegistry struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

var _ auth.ResetTokenRegistry = (*ResetTokenRegistry)(nil)

type Option func(*ResetTokenRegistry)

func WithKeyPrefix(prefix string) Option {
	return func(r *ResetTokenRegistry) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *ResetTokenRegistry) {
		if now != nil {
			r.now = now
		}
	}
}

func NewResetTokenRegistry(client redis.UniversalClient, opts ...Option) *ResetTokenRegistry {
	r := &ResetTokenRegistry{
		client: client,
		prefix: DefaultKeyPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Consume returns true the first time tokenID is seen.
func (r *ResetTokenRegistry) Consume(ctx context.Context, tokenID string, expiresAt time.Time) (bool, error) {
	if tokenID == "" {
		return false, goerrors.New("reset token id is required", goerrors.CategoryBadInput)
	}

	ttl := expiresAt.Sub(r.now())
	if ttl < time.Second {
		// the token is already dead, keep the marker around briefly anyway
		ttl = time.Second
	}

	ok, err := r.client.SetNX(ctx, r.prefix+tokenID, r.now().Unix(), ttl).Result()
	if err != nil {
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "redis setnx")
	}
	return ok, nil
}

// Release forgets tokenID so it can be consumed again.
func (r *ResetTokenRegistry) Release(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return goerrors.New("reset token id is required", goerrors.CategoryBadInput)
	}

	if err := r.client.Del(ctx, r.prefix+tokenID).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "redis del")
	}
	return nil
}

// Ping checks the connection, used at startup.
func (r *ResetTokenRegistry) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "redis ping")
	}
	return nil
}
