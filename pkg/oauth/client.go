package oauth

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/oauthkit/pkg/logger"
)

// Client runs the OAuth2 client flow against a Provider.
//
// A Client is safe for concurrent use, but the state it issues belongs to
// one redirect round trip at a time unless a StateStore is configured.
type Client struct {
	provider   Provider
	transport  Transport
	stateStore StateStore
	logger     *slog.Logger
	redirect   RedirectHandler
	grants     map[string]Grant
	now        func() time.Time
	state      string
	cfg        Config
	stateTTL   time.Duration
	mu         sync.RWMutex
}

// NewClient validates cfg, applies defaults and binds it to provider.
func NewClient(cfg Config, provider Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, ErrMissingProvider
	}
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := options{stateTTL: defaultStateTTL}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		provider:   provider,
		transport:  o.transport,
		stateStore: o.stateStore,
		stateTTL:   o.stateTTL,
		logger:     o.logger,
		redirect:   o.redirect,
		grants:     make(map[string]Grant, len(o.grants)),
		now:        o.now,
		cfg:        cfg,
	}
	if c.transport == nil {
		c.transport = NewHTTPTransport(o.httpClient)
	}
	if c.logger == nil {
		c.logger = logger.NewNope()
	}
	if c.now == nil {
		c.now = time.Now
	}
	for _, g := range o.grants {
		if !g.Valid() {
			return nil, fmt.Errorf("%w: cannot register %s grant", ErrInvalidGrant, g)
		}
		c.grants[g.Name()] = g
	}
	return c, nil
}

// Provider returns the provider the client is bound to.
func (c *Client) Provider() Provider { return c.provider }

// ClientID returns the configured client ID.
func (c *Client) ClientID() string { return c.cfg.ClientID }

// ClientSecret returns the configured client secret.
func (c *Client) ClientSecret() string { return c.cfg.ClientSecret }

// RedirectURI returns the configured redirect URI.
func (c *Client) RedirectURI() string { return c.cfg.RedirectURI }

// Options returns a copy of the effective configuration.
func (c *Client) Options() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config()
}

// config returns a deep copy of the configuration. Caller must hold the mutex.
func (c *Client) config() Config {
	cfg := c.cfg
	cfg.Scopes = slices.Clone(c.cfg.Scopes)
	cfg.Headers = maps.Clone(c.cfg.Headers)
	cfg.Extra = maps.Clone(c.cfg.Extra)
	return cfg
}

func (c *Client) snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config()
}

// SetScopes replaces the scopes requested by AuthorizationURL.
func (c *Client) SetScopes(scopes ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Scopes = slices.Clone(scopes)
}

// SetScopeSeparator sets the string used to join scopes.
func (c *Client) SetScopeSeparator(sep string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.ScopeSeparator = sep
}

// SetResponseType sets the format used to decode provider responses.
func (c *Client) SetResponseType(f ResponseFormat) error {
	if !f.Valid() {
		return fmt.Errorf("%w: response type %q", ErrInvalidOption, f)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.ResponseType = f
	return nil
}

// SetMethod sets the HTTP method of token requests.
func (c *Client) SetMethod(m Method) error {
	if !m.Valid() {
		return fmt.Errorf("%w: method %q", ErrInvalidOption, m)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Method = m
	return nil
}

// SetAuthorizationHeader sets the scheme used by Headers, e.g. "Bearer".
// An empty value disables the Authorization header.
func (c *Client) SetAuthorizationHeader(scheme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.AuthorizationHeader = scheme
}

// SetHeaders replaces the static headers sent with every request.
func (c *Client) SetHeaders(headers map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.Headers = maps.Clone(headers)
	if c.cfg.Headers == nil {
		c.cfg.Headers = map[string]string{}
	}
}

// SetUIDKey sets the user-info key read by the default user mapper.
func (c *Client) SetUIDKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg.UIDKey = fallback(key, defaultUIDKey)
}

// SetRedirectHandler sets the callback invoked by Authorize.
func (c *Client) SetRedirectHandler(h RedirectHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.redirect = h
}

// ResolveGrant resolves a built-in or registered grant by name.
func (c *Client) ResolveGrant(name string) (Grant, error) {
	if g, ok := c.grants[name]; ok {
		return g, nil
	}
	return ResolveGrant(name)
}

func (c *Client) errorChecker() ErrorChecker {
	if ec, ok := c.provider.(ErrorChecker); ok {
		return ec
	}
	return DefaultErrorChecker
}

// tokenKeys falls back to the configured UIDKey for the resource owner id.
func (c *Client) tokenKeys() TokenKeys {
	var keys TokenKeys
	if kp, ok := c.provider.(TokenKeyProvider); ok {
		keys = kp.TokenKeys()
	}
	if keys.UID == "" {
		c.mu.RLock()
		keys.UID = c.cfg.UIDKey
		c.mu.RUnlock()
	}
	return keys.withDefaults()
}
