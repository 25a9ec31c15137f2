package oauth

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
)

// Headers returns the headers that authorize an API call with token.
//
// The static configured headers are always included. When token is non-empty and
// an authorization header scheme is configured, Authorization is set to
// "<scheme> <token>". A nil token yields only the static headers.
func (c *Client) Headers(token TokenValuer) map[string]string {
	cfg := c.snapshot()
	h := maps.Clone(cfg.Headers)
	if h == nil {
		h = map[string]string{}
	}
	if token == nil || cfg.AuthorizationHeader == "" {
		return h
	}
	if v := token.TokenValue(); v != "" {
		h["Authorization"] = cfg.AuthorizationHeader + " " + v
	}
	return h
}

func (c *Client) userMapper() UserMapper {
	if m, ok := c.provider.(UserMapper); ok {
		return m
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return FieldMapper{UIDKey: c.cfg.UIDKey}
}

// UserUID returns the user id from a decoded user-info response.
func (c *Client) UserUID(resp Response, token *AccessToken) (string, bool) {
	return c.userMapper().UserUID(resp, token)
}

// UserScreenName returns the display name from a decoded user-info response.
func (c *Client) UserScreenName(resp Response, token *AccessToken) (string, bool) {
	return c.userMapper().UserScreenName(resp, token)
}

// UserEmail returns the email from a decoded user-info response.
func (c *Client) UserEmail(resp Response, token *AccessToken) (string, bool) {
	return c.userMapper().UserEmail(resp, token)
}

// Fetch performs an authenticated GET and returns the raw body.
func (c *Client) Fetch(ctx context.Context, url string, token TokenValuer) ([]byte, error) {
	header := c.Headers(token)
	if _, ok := header["Accept"]; !ok {
		c.mu.RLock()
		header["Accept"] = acceptHeader(c.cfg.ResponseType)
		c.mu.RUnlock()
	}
	return c.transport.Send(ctx, &Request{
		Method: http.MethodGet,
		URL:    url,
		Header: header,
	})
}

// FetchUserInfo retrieves user information using the access token.
// Missing user fields leave the corresponding UserInfo fields empty.
func (c *Client) FetchUserInfo(ctx context.Context, token *AccessToken) (*UserInfo, error) {
	if token.TokenValue() == "" {
		return nil, ErrMissingToken
	}

	log := c.logger.With(slog.String("provider", c.provider.Name()))

	body, err := c.Fetch(ctx, c.provider.UserInfoURL(token), token)
	if err != nil {
		log.ErrorContext(ctx, "user info request failed", slog.String("error", err.Error()))
		return nil, err
	}
	resp, err := c.decode(body)
	if err != nil {
		return nil, err
	}
	if err := c.errorChecker().CheckError(resp); err != nil {
		log.WarnContext(ctx, "provider rejected user info request", slog.String("error", err.Error()))
		return nil, err
	}

	m := c.userMapper()
	info := &UserInfo{Raw: resp}
	info.ID, _ = m.UserUID(resp, token)
	info.Name, _ = m.UserScreenName(resp, token)
	info.Email, _ = m.UserEmail(resp, token)

	if e, ok := c.provider.(UserInfoEnricher); ok {
		if err := e.EnrichUserInfo(ctx, c, token, info); err != nil {
			return nil, err
		}
	}
	return info, nil
}
