package oauth

import (
	"context"
)

// UserInfo represents provider-agnostic user information
// retrieved from an OAuth provider's userinfo endpoint.
type UserInfo struct {
	Raw           Response // decoded user-info response
	ID            string   // Provider's unique user identifier
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// Provider supplies the endpoints of a concrete identity provider.
// Error detection, user field mapping and token field names are optional
// capabilities: implement ErrorChecker, UserMapper, TokenKeyProvider or
// UserInfoEnricher to override the defaults.
type Provider interface {
	// Name returns the provider identifier (e.g., "google", "github").
	Name() string

	// AuthorizeURL returns the authorization endpoint.
	AuthorizeURL() string

	// TokenURL returns the token endpoint.
	TokenURL() string

	// UserInfoURL returns the user-info endpoint for the given token.
	UserInfoURL(token *AccessToken) string
}

// ErrorChecker inspects a decoded response and returns an error
// (usually *IdentityProviderError) if the provider reported a failure.
type ErrorChecker interface {
	CheckError(resp Response) error
}

// ErrorCheckerFunc adapts a function to ErrorChecker.
type ErrorCheckerFunc func(resp Response) error

func (f ErrorCheckerFunc) CheckError(resp Response) error { return f(resp) }

// UserMapper maps a decoded user-info response to identity attributes.
// Absent fields report false; they are not errors.
type UserMapper interface {
	UserUID(resp Response, token *AccessToken) (string, bool)
	UserScreenName(resp Response, token *AccessToken) (string, bool)
	UserEmail(resp Response, token *AccessToken) (string, bool)
}

// TokenKeyProvider overrides the token response field names.
type TokenKeyProvider interface {
	TokenKeys() TokenKeys
}

// Fetcher performs authenticated GET requests on behalf of a UserInfoEnricher.
type Fetcher interface {
	Fetch(ctx context.Context, url string, token TokenValuer) ([]byte, error)
}

// UserInfoEnricher completes a UserInfo with data from additional endpoints.
type UserInfoEnricher interface {
	EnrichUserInfo(ctx context.Context, f Fetcher, token *AccessToken, info *UserInfo) error
}

// FieldMapper is a UserMapper reading flat top-level keys.
type FieldMapper struct {
	UIDKey   string
	NameKey  string
	EmailKey string
}

func (m FieldMapper) UserUID(resp Response, _ *AccessToken) (string, bool) {
	return resp.String(fallback(m.UIDKey, defaultUIDKey))
}

func (m FieldMapper) UserScreenName(resp Response, _ *AccessToken) (string, bool) {
	return resp.String(fallback(m.NameKey, "name"))
}

func (m FieldMapper) UserEmail(resp Response, _ *AccessToken) (string, bool) {
	return resp.String(fallback(m.EmailKey, "email"))
}

// DefaultErrorChecker detects RFC 6749 error responses: a non-empty "error" field,
// described by "error_description" and coded by "error_code" or "code" when present.
// It is applied to providers that do not implement ErrorChecker.
var DefaultErrorChecker ErrorChecker = ErrorCheckerFunc(checkRFC6749Error)

func checkRFC6749Error(resp Response) error {
	errValue, ok := resp.String("error")
	if !ok {
		return nil
	}
	msg := errValue
	if desc, ok := resp.String("error_description"); ok {
		msg = desc
	}
	code := any(errValue)
	if c, ok := resp.String("error_code"); ok {
		code = c
	} else if c, ok := resp.String("code"); ok {
		code = c
	}
	return NewIdentityProviderError(msg, code, resp)
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
