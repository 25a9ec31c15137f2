package oauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StateStore keeps issued CSRF states until the callback consumes them.
type StateStore interface {
	// Save records state for ttl.
	Save(ctx context.Context, state string, ttl time.Duration) error

	// Consume removes state and returns an error if it was not stored or has expired.
	Consume(ctx context.Context, state string) error
}

// RedirectHandler receives the authorization URL instead of the client performing
// a redirect itself. The client is passed so the handler can read State.
type RedirectHandler func(authURL string, c *Client) error

// HTTPRedirect returns a RedirectHandler that answers r with a 302 to the authorization URL.
func HTTPRedirect(w http.ResponseWriter, r *http.Request) RedirectHandler {
	return func(authURL string, _ *Client) error {
		http.Redirect(w, r, authURL, http.StatusFound)
		return nil
	}
}

// State returns the state used by the last AuthorizationURL call,
// or the configured state if none was issued yet.
func (c *Client) State() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state != "" {
		return c.state
	}
	return c.cfg.State
}

// AuthorizationURL builds the provider authorization URL.
//
// The query always carries client_id, redirect_uri, response_type=code, scope and state.
// Entries in params override the defaults except client_id and redirect_uri.
// A "state" param, or else the configured state, is used verbatim; otherwise
// a fresh random state is generated for every call.
func (c *Client) AuthorizationURL(ctx context.Context, params map[string]string) (string, error) {
	c.mu.RLock()
	state := params["state"]
	if state == "" {
		state = c.cfg.State
	}
	if state == "" {
		state = newState()
	}
	cfg := c.config()
	c.mu.RUnlock()

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("scope", strings.Join(cfg.Scopes, cfg.ScopeSeparator))
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("state", state)
	q.Set("client_id", cfg.ClientID)
	q.Set("redirect_uri", cfg.RedirectURI)

	if c.stateStore != nil {
		if err := c.stateStore.Save(ctx, state, c.stateTTL); err != nil {
			return "", err
		}
	}

	// State reports only persisted values.
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	return appendQuery(c.provider.AuthorizeURL(), q), nil
}

// Authorize builds the authorization URL and hands it to the redirect handler, if any.
// The URL is returned either way.
func (c *Client) Authorize(ctx context.Context, params map[string]string) (string, error) {
	authURL, err := c.AuthorizationURL(ctx, params)
	if err != nil {
		return "", err
	}

	c.mu.RLock()
	h := c.redirect
	c.mu.RUnlock()

	if h != nil {
		if err := h(authURL, c); err != nil {
			return "", err
		}
	}
	return authURL, nil
}

// VerifyState checks the state returned on the callback. With a StateStore the
// state is consumed and can be verified only once; otherwise it is compared
// with State.
func (c *Client) VerifyState(ctx context.Context, got string) error {
	if got == "" {
		return ErrStateMismatch
	}
	if c.stateStore != nil {
		if err := c.stateStore.Consume(ctx, got); err != nil {
			return errors.Join(ErrStateMismatch, err)
		}
		return nil
	}
	want := c.State()
	if want == "" || subtle.ConstantTimeCompare([]byte(want), []byte(got)) != 1 {
		return ErrStateMismatch
	}
	return nil
}

func newState() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func appendQuery(base string, q url.Values) string {
	if len(q) == 0 {
		return base
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + q.Encode()
}
