package statestore

import "time"

const defaultStateTTL = 10 * time.Minute

// MemoryOption configures the in-memory store.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		defaultTTL:      defaultStateTTL,
		cleanupInterval: time.Minute,
		maxEntries:      100_000,
	}
}

// WithDefaultTTL sets the TTL used when Save is called with a non-positive TTL.
// Default: 10 minutes.
func WithDefaultTTL(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.defaultTTL = d
	}
}

// WithCleanupInterval sets how often expired states are collected.
// Zero disables the janitor. Default: 1 minute.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(o *memoryOptions) {
		o.cleanupInterval = d
	}
}

// WithMaxEntries caps the number of pending states. Zero means unlimited.
// Default: 100000.
func WithMaxEntries(n int) MemoryOption {
	return func(o *memoryOptions) {
		o.maxEntries = n
	}
}

// RedisOption configures the Redis store.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix. Default: "oauth:state:".
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) {
		r.prefix = prefix
	}
}

// WithRedisDefaultTTL sets the TTL used when Save is called with a non-positive TTL.
// Default: 10 minutes.
func WithRedisDefaultTTL(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.defaultTTL = d
		}
	}
}

// DialOption configures DialRedis.
type DialOption func(*dialOptions)

type dialOptions struct {
	poolSize      int
	retryAttempts uint
	retryInterval time.Duration
	dialTimeout   time.Duration
	readTimeout   time.Duration
	writeTimeout  time.Duration
}

func defaultDialOptions() *dialOptions {
	return &dialOptions{
		poolSize:      10,
		retryAttempts: 3,
		retryInterval: time.Second,
		dialTimeout:   5 * time.Second,
		readTimeout:   3 * time.Second,
		writeTimeout:  3 * time.Second,
	}
}

// WithPoolSize sets the maximum number of connections in the pool.
// Default: 10
func WithPoolSize(n int) DialOption {
	return func(o *dialOptions) {
		o.poolSize = n
	}
}

// WithRetry configures connection attempts and the initial backoff interval.
// Default: 3 attempts starting at 1 second.
func WithRetry(attempts uint, interval time.Duration) DialOption {
	return func(o *dialOptions) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// WithDialTimeout sets the timeout for establishing new connections.
// Default: 5 seconds
func WithDialTimeout(d time.Duration) DialOption {
	return func(o *dialOptions) {
		o.dialTimeout = d
	}
}
