package oauth

import (
	"log/slog"
	"net/http"
	"time"
)

const defaultStateTTL = 10 * time.Minute

// Option configures a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	transport  Transport
	logger     *slog.Logger
	redirect   RedirectHandler
	stateStore StateStore
	now        func() time.Time
	grants     []Grant
	stateTTL   time.Duration
}

// WithHTTPClient sets a custom HTTP client for the default transport.
// This is useful for testing with httptest servers or injecting
// custom round trippers. Ignored when WithTransport is used.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTransport replaces the default net/http transport.
func WithTransport(t Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithLogger sets the logger. Default: a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRedirectHandler sets the callback invoked by Authorize.
func WithRedirectHandler(h RedirectHandler) Option {
	return func(o *options) {
		o.redirect = h
	}
}

// WithStateStore persists every issued state so VerifyState can check it
// across requests and processes. A non-positive ttl selects the default of 10 minutes.
func WithStateStore(store StateStore, ttl time.Duration) Option {
	return func(o *options) {
		o.stateStore = store
		if ttl > 0 {
			o.stateTTL = ttl
		}
	}
}

// WithGrant registers an extension grant so it can be resolved by name.
func WithGrant(g Grant) Option {
	return func(o *options) {
		o.grants = append(o.grants, g)
	}
}

func withClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
