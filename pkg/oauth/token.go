package oauth

import (
	"maps"
	"time"

	"golang.org/x/oauth2"
)

const defaultTokenUIDKey = "uid"

// TokenKeys names the token response fields read into an AccessToken.
// When UID is set but absent from a response, the "uid" field is read instead.
type TokenKeys struct {
	AccessToken  string
	ExpiresIn    string
	RefreshToken string
	UID          string
}

// DefaultTokenKeys returns the RFC 6749 field names.
func DefaultTokenKeys() TokenKeys {
	return TokenKeys{
		AccessToken:  "access_token",
		ExpiresIn:    "expires_in",
		RefreshToken: "refresh_token",
		UID:          defaultTokenUIDKey,
	}
}

func (k TokenKeys) withDefaults() TokenKeys {
	d := DefaultTokenKeys()
	if k.AccessToken == "" {
		k.AccessToken = d.AccessToken
	}
	if k.ExpiresIn == "" {
		k.ExpiresIn = d.ExpiresIn
	}
	if k.RefreshToken == "" {
		k.RefreshToken = d.RefreshToken
	}
	if k.UID == "" {
		k.UID = d.UID
	}
	return k
}

// TokenValuer is anything that carries a raw access token value.
// Both *AccessToken and RawToken implement it.
type TokenValuer interface {
	TokenValue() string
}

// RawToken is an access token value held without its metadata.
type RawToken string

// TokenValue returns the token itself.
func (t RawToken) TokenValue() string { return string(t) }

// AccessToken is an immutable access token built from a token endpoint response.
type AccessToken struct {
	expires      time.Time
	values       Response
	token        string
	refreshToken string
	uid          string
	expiresIn    int64
	hasExpiry    bool
}

// NewAccessToken builds an AccessToken from a decoded token response.
// Returns ErrMissingToken if the access token field is absent or empty.
func NewAccessToken(resp Response, keys TokenKeys) (*AccessToken, error) {
	return newAccessToken(resp, keys, time.Now())
}

func newAccessToken(resp Response, keys TokenKeys, now time.Time) (*AccessToken, error) {
	keys = keys.withDefaults()

	token, ok := resp.String(keys.AccessToken)
	if !ok {
		return nil, ErrMissingToken
	}

	t := &AccessToken{
		token:  token,
		values: make(Response, len(resp)),
	}
	t.refreshToken, _ = resp.String(keys.RefreshToken)
	uidKey := keys.UID
	t.uid, ok = resp.String(uidKey)
	if !ok && uidKey != defaultTokenUIDKey {
		if t.uid, ok = resp.String(defaultTokenUIDKey); ok {
			uidKey = defaultTokenUIDKey
		}
	}
	if n, ok := resp.Int64(keys.ExpiresIn); ok && n > 0 {
		t.expiresIn = n
		t.hasExpiry = true
		t.expires = now.Add(time.Duration(n) * time.Second)
	}

	for k, v := range resp {
		switch k {
		case keys.AccessToken, keys.ExpiresIn, keys.RefreshToken, uidKey:
			continue
		}
		t.values[k] = v
	}
	return t, nil
}

// TokenValue returns the access token. It is safe on a nil receiver.
func (t *AccessToken) TokenValue() string {
	if t == nil {
		return ""
	}
	return t.token
}

// String returns the access token value.
func (t *AccessToken) String() string { return t.TokenValue() }

// ExpiresIn returns the lifetime in seconds reported by the provider.
func (t *AccessToken) ExpiresIn() (int64, bool) { return t.expiresIn, t.hasExpiry }

// Expires returns the absolute expiry. Zero if the provider did not report one.
func (t *AccessToken) Expires() time.Time { return t.expires }

// Expired reports whether the token has a known expiry in the past.
func (t *AccessToken) Expired() bool {
	return t.hasExpiry && !time.Now().Before(t.expires)
}

// RefreshToken returns the refresh token, if any.
func (t *AccessToken) RefreshToken() string { return t.refreshToken }

// UID returns the resource owner id sent with the token, if any.
func (t *AccessToken) UID() string { return t.uid }

// Extra returns a provider-specific field from the token response.
func (t *AccessToken) Extra(key string) any { return t.values[key] }

// Values returns a copy of the provider-specific fields.
func (t *AccessToken) Values() Response { return maps.Clone(t.values) }

// OAuth2 converts the token for use with golang.org/x/oauth2 clients.
func (t *AccessToken) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.token,
		RefreshToken: t.refreshToken,
		Expiry:       t.expires,
		ExpiresIn:    t.expiresIn,
	}
	if tt, ok := t.values.String("token_type"); ok {
		tok.TokenType = tt
	}
	extra := map[string]any(t.Values())
	if t.uid != "" {
		extra["uid"] = t.uid
	}
	return tok.WithExtra(extra)
}

// AccessTokenFromOAuth2 wraps a token obtained through golang.org/x/oauth2.
func AccessTokenFromOAuth2(tok *oauth2.Token) (*AccessToken, error) {
	if tok == nil || tok.AccessToken == "" {
		return nil, ErrMissingToken
	}
	t := &AccessToken{
		token:        tok.AccessToken,
		refreshToken: tok.RefreshToken,
		expires:      tok.Expiry,
		values:       Response{},
	}
	if tok.TokenType != "" {
		t.values["token_type"] = tok.TokenType
	}
	if !tok.Expiry.IsZero() {
		t.hasExpiry = true
		t.expiresIn = tok.ExpiresIn
		if t.expiresIn == 0 {
			t.expiresIn = int64(time.Until(tok.Expiry).Seconds())
		}
	}
	return t, nil
}
