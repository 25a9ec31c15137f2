package oauth

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
)

var reservedParams = []string{"client_id", "client_secret", "redirect_uri", "grant_type"}

func acceptHeader(f ResponseFormat) string {
	switch f {
	case FormatXML:
		return "application/xml"
	case FormatCSV:
		return "text/csv"
	case FormatQueryString:
		return "application/x-www-form-urlencoded"
	default:
		return "application/json"
	}
}

// BuildTokenRequest composes the token endpoint request for grant.
// It fails with ErrInvalidGrant, ErrReservedParameter or ErrMissingParameter,
// checked in that order, without touching the network.
func (c *Client) BuildTokenRequest(grant Grant, params map[string]string) (*Request, error) {
	if !grant.Valid() {
		return nil, ErrInvalidGrant
	}
	for _, key := range reservedParams {
		if _, ok := params[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrReservedParameter, key)
		}
	}
	if key, missing := grant.missing(params); missing {
		return nil, fmt.Errorf("%w: %s requires %s", ErrMissingParameter, grant.Name(), key)
	}

	cfg := c.snapshot()

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	form.Set("redirect_uri", cfg.RedirectURI)
	form.Set("grant_type", grant.Name())

	header := maps.Clone(cfg.Headers)
	if header == nil {
		header = map[string]string{}
	}
	header["Accept"] = acceptHeader(cfg.ResponseType)

	req := &Request{Header: header, URL: c.provider.TokenURL()}
	switch cfg.Method {
	case MethodGet:
		req.Method = http.MethodGet
		req.URL = appendQuery(req.URL, form)
	default:
		req.Method = http.MethodPost
		req.Body = []byte(form.Encode())
		header["Content-Type"] = "application/x-www-form-urlencoded"
	}
	return req, nil
}

// GetAccessToken runs grant against the token endpoint.
//
// The response is decoded in the configured format and passed to the provider's
// error checker before the token is built, so a provider error never yields a token.
// Transport errors are returned unchanged.
func (c *Client) GetAccessToken(ctx context.Context, grant Grant, params map[string]string) (*AccessToken, error) {
	req, err := c.BuildTokenRequest(grant, params)
	if err != nil {
		return nil, err
	}

	log := c.logger.With(
		slog.String("provider", c.provider.Name()),
		slog.String("grant_type", grant.Name()),
	)
	log.DebugContext(ctx, "requesting access token", slog.String("method", req.Method))

	body, err := c.transport.Send(ctx, req)
	if err != nil {
		log.ErrorContext(ctx, "token request failed", slog.String("error", err.Error()))
		return nil, err
	}

	resp, err := c.decode(body)
	if err != nil {
		log.WarnContext(ctx, "malformed token response", slog.String("error", err.Error()))
		return nil, err
	}
	if err := c.errorChecker().CheckError(resp); err != nil {
		log.WarnContext(ctx, "provider rejected token request", slog.String("error", err.Error()))
		return nil, err
	}

	tok, err := newAccessToken(resp, c.tokenKeys(), c.now())
	if err != nil {
		return nil, err
	}
	log.DebugContext(ctx, "access token issued", slog.Bool("refreshable", tok.RefreshToken() != ""))
	return tok, nil
}

// GetAccessTokenByName resolves a grant by name (built-in or registered with WithGrant)
// and runs it.
func (c *Client) GetAccessTokenByName(ctx context.Context, name string, params map[string]string) (*AccessToken, error) {
	grant, err := c.ResolveGrant(name)
	if err != nil {
		return nil, err
	}
	return c.GetAccessToken(ctx, grant, params)
}

// Exchange trades an authorization code for a token.
func (c *Client) Exchange(ctx context.Context, code string) (*AccessToken, error) {
	return c.GetAccessToken(ctx, AuthorizationCode, map[string]string{"code": code})
}

// Refresh trades a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AccessToken, error) {
	if refreshToken == "" {
		return nil, ErrMissingRefreshToken
	}
	return c.GetAccessToken(ctx, RefreshToken, map[string]string{"refresh_token": refreshToken})
}

// PasswordCredentials runs the resource owner password grant.
func (c *Client) PasswordCredentials(ctx context.Context, username, password string) (*AccessToken, error) {
	return c.GetAccessToken(ctx, Password, map[string]string{"username": username, "password": password})
}

// ClientCredentials runs the client credentials grant with optional extra params.
func (c *Client) ClientCredentials(ctx context.Context, params map[string]string) (*AccessToken, error) {
	return c.GetAccessToken(ctx, ClientCredentials, params)
}

func (c *Client) decode(body []byte) (Response, error) {
	c.mu.RLock()
	format := c.cfg.ResponseType
	c.mu.RUnlock()
	return Decode(body, format)
}
