package oauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

func TestResolveGrant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     oauth.GrantKind
		required []string
	}{
		{"authorization_code", oauth.GrantAuthorizationCode, []string{"code"}},
		{"password", oauth.GrantPassword, []string{"username", "password"}},
		{"client_credentials", oauth.GrantClientCredentials, nil},
		{"refresh_token", oauth.GrantRefreshToken, []string{"refresh_token"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g, err := oauth.ResolveGrant(tt.name)
			require.NoError(t, err)
			require.True(t, g.Valid())
			require.Equal(t, tt.name, g.Name())
			require.Equal(t, tt.name, g.String())
			require.Equal(t, tt.kind, g.Kind())
			require.Equal(t, tt.required, g.Required())
		})
	}

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()
		g, err := oauth.ResolveGrant("foo")
		require.ErrorIs(t, err, oauth.ErrInvalidGrant)
		require.False(t, g.Valid())
		require.Equal(t, "invalid", g.String())
	})
}

func TestNewGrant(t *testing.T) {
	t.Parallel()

	t.Run("extension grant", func(t *testing.T) {
		t.Parallel()
		g, err := oauth.NewGrant("urn:ietf:params:oauth:grant-type:jwt-bearer", "assertion")
		require.NoError(t, err)
		require.True(t, g.Valid())
		require.Equal(t, oauth.GrantCustom, g.Kind())
		require.Equal(t, []string{"assertion"}, g.Required())
	})

	t.Run("built-in name", func(t *testing.T) {
		t.Parallel()
		g, err := oauth.NewGrant("password", "ignored")
		require.NoError(t, err)
		require.Equal(t, oauth.Password, g)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.NewGrant("  ")
		require.ErrorIs(t, err, oauth.ErrInvalidGrant)
	})

	t.Run("required is copied", func(t *testing.T) {
		t.Parallel()
		g, err := oauth.NewGrant("custom", "a")
		require.NoError(t, err)
		req := g.Required()
		req[0] = "b"
		require.Equal(t, []string{"a"}, g.Required())
	})
}
