package statestore

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

var _ oauth.StateStore = (*Redis)(nil)

const defaultPrefix = "oauth:state:"

// Redis keeps issued states in Redis so any instance can verify a callback.
// Consume uses GETDEL, so a state is accepted at most once even under
// concurrent callbacks.
type Redis struct {
	client     redis.UniversalClient
	prefix     string
	defaultTTL time.Duration
}

// NewRedis creates a Redis-backed store. The client lifecycle stays with the caller.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client:     client,
		prefix:     defaultPrefix,
		defaultTTL: defaultStateTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save stores state with ttl. A non-positive ttl uses the default TTL.
func (r *Redis) Save(ctx context.Context, state string, ttl time.Duration) error {
	if state == "" {
		return ErrEmptyState
	}
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	return r.client.Set(ctx, r.key(state), "1", ttl).Err()
}

// Consume atomically deletes state. It returns ErrNotFound if the key is absent.
func (r *Redis) Consume(ctx context.Context, state string) error {
	if state == "" {
		return ErrEmptyState
	}
	if err := r.client.GetDel(ctx, r.key(state)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Ping validates Redis connectivity for health endpoints.
func (r *Redis) Ping(ctx context.Context) error {
	if r.client == nil {
		return ErrHealthcheckFailed
	}
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

func (r *Redis) key(state string) string {
	return r.prefix + state
}

// DialRedis connects to a redis:// or rediss:// URL, retrying with exponential
// backoff until the server answers PING or the attempts run out.
func DialRedis(ctx context.Context, url string, opts ...DialOption) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	o := defaultDialOptions()
	for _, opt := range opts {
		opt(o)
	}

	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}
	redisOpts.PoolSize = o.poolSize
	redisOpts.DialTimeout = o.dialTimeout
	redisOpts.ReadTimeout = o.readTimeout
	redisOpts.WriteTimeout = o.writeTimeout

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = o.retryInterval

	client, err := backoff.Retry(ctx, func() (*redis.Client, error) {
		c := redis.NewClient(redisOpts)
		if err := c.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return nil, err
		}
		return c, nil
	},
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(max(o.retryAttempts, 1)),
		backoff.WithNotify(func(err error, next time.Duration) {
			slog.WarnContext(ctx, "redis not ready, retrying",
				slog.String("error", err.Error()),
				slog.Duration("next", next),
			)
		}),
	)
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}
	return client, nil
}
