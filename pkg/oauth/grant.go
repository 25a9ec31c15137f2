package oauth

import (
	"fmt"
	"slices"
	"strings"
)

// GrantKind tags a Grant. The zero value marks an invalid grant.
type GrantKind int

const (
	GrantInvalid GrantKind = iota
	GrantAuthorizationCode
	GrantPassword
	GrantClientCredentials
	GrantRefreshToken
	GrantCustom
)

// Grant describes an OAuth2 grant type and the request parameters it requires.
// Use the predefined grants or NewGrant for extension grants.
type Grant struct {
	name     string
	required []string
	kind     GrantKind
}

var (
	// AuthorizationCode exchanges the code received on the redirect callback.
	AuthorizationCode = Grant{kind: GrantAuthorizationCode, name: "authorization_code", required: []string{"code"}}

	// Password is the resource owner password credentials grant.
	Password = Grant{kind: GrantPassword, name: "password", required: []string{"username", "password"}}

	// ClientCredentials authenticates the client itself.
	ClientCredentials = Grant{kind: GrantClientCredentials, name: "client_credentials"}

	// RefreshToken trades a refresh token for a new access token.
	RefreshToken = Grant{kind: GrantRefreshToken, name: "refresh_token", required: []string{"refresh_token"}}
)

var builtinGrants = map[string]Grant{
	AuthorizationCode.name: AuthorizationCode,
	Password.name:          Password,
	ClientCredentials.name: ClientCredentials,
	RefreshToken.name:      RefreshToken,
}

// NewGrant defines an extension grant. Built-in names resolve to the built-in grant
// and ignore required. Register the result on a client with WithGrant.
func NewGrant(name string, required ...string) (Grant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Grant{}, fmt.Errorf("%w: empty grant name", ErrInvalidGrant)
	}
	if g, ok := builtinGrants[name]; ok {
		return g, nil
	}
	return Grant{kind: GrantCustom, name: name, required: slices.Clone(required)}, nil
}

// ResolveGrant returns the built-in grant with the given name.
func ResolveGrant(name string) (Grant, error) {
	g, ok := builtinGrants[name]
	if !ok {
		return Grant{}, fmt.Errorf("%w: %q", ErrInvalidGrant, name)
	}
	return g, nil
}

// Name returns the grant_type value sent to the token endpoint.
func (g Grant) Name() string { return g.name }

// Kind returns the grant tag.
func (g Grant) Kind() GrantKind { return g.kind }

// Required returns the parameter names the grant needs.
func (g Grant) Required() []string { return slices.Clone(g.required) }

// Valid reports whether g is a usable grant.
func (g Grant) Valid() bool {
	return g.kind != GrantInvalid && g.name != ""
}

func (g Grant) String() string {
	if !g.Valid() {
		return "invalid"
	}
	return g.name
}

// missing returns the first required parameter absent from params.
func (g Grant) missing(params map[string]string) (string, bool) {
	for _, key := range g.required {
		if params[key] == "" {
			return key, true
		}
	}
	return "", false
}
