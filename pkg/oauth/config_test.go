package oauth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

func TestDecodeConfig(t *testing.T) {
	t.Parallel()

	t.Run("recognized options", func(t *testing.T) {
		t.Parallel()
		cfg, err := oauth.DecodeConfig(map[string]any{
			"clientId":            "mock_client_id",
			"clientSecret":        "mock_secret",
			"redirectUri":         "none",
			"state":               "mock_state",
			"scopes":              []any{"mock_scope"},
			"scopeSeparator":      ";",
			"responseType":        "xml",
			"method":              "get",
			"authorizationHeader": "Bearer",
			"headers":             map[string]any{"X-Test": "1"},
			"uidKey":              "user_id",
		})
		require.NoError(t, err)
		require.Equal(t, "mock_client_id", cfg.ClientID)
		require.Equal(t, "mock_secret", cfg.ClientSecret)
		require.Equal(t, "none", cfg.RedirectURI)
		require.Equal(t, "mock_state", cfg.State)
		require.Equal(t, []string{"mock_scope"}, cfg.Scopes)
		require.Equal(t, ";", cfg.ScopeSeparator)
		require.Equal(t, oauth.FormatXML, cfg.ResponseType)
		require.Equal(t, oauth.MethodGet, cfg.Method)
		require.Equal(t, "Bearer", cfg.AuthorizationHeader)
		require.Equal(t, map[string]string{"X-Test": "1"}, cfg.Headers)
		require.Equal(t, "user_id", cfg.UIDKey)
		require.Empty(t, cfg.Extra)
	})

	t.Run("comma separated scopes", func(t *testing.T) {
		t.Parallel()
		cfg, err := oauth.DecodeConfig(map[string]any{"scopes": "a,b"})
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b"}, cfg.Scopes)
	})

	t.Run("unknown keys go to extra", func(t *testing.T) {
		t.Parallel()
		cfg, err := oauth.DecodeConfig(map[string]any{
			"clientId": "id",
			"tenant":   "common",
			"prompt":   "consent",
		})
		require.NoError(t, err)
		require.Equal(t, "id", cfg.ClientID)
		require.Equal(t, map[string]any{"tenant": "common", "prompt": "consent"}, cfg.Extra)
	})

	t.Run("strict rejects unknown keys", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.DecodeConfigStrict(map[string]any{
			"clientId": "id",
			"tenant":   "common",
			"prompt":   "consent",
		})
		require.ErrorIs(t, err, oauth.ErrUnknownOption)
		require.Contains(t, err.Error(), "prompt, tenant")
	})

	t.Run("wrong value type", func(t *testing.T) {
		t.Parallel()
		_, err := oauth.DecodeConfig(map[string]any{"headers": "not-a-map"})
		require.ErrorIs(t, err, oauth.ErrInvalidOption)
	})

	t.Run("decoded config builds a client", func(t *testing.T) {
		t.Parallel()
		cfg, err := oauth.DecodeConfig(map[string]any{
			"clientId":       "mock_client_id",
			"clientSecret":   "mock_secret",
			"redirectUri":    "none",
			"scopeSeparator": ";",
		})
		require.NoError(t, err)

		c, err := oauth.NewClient(cfg, mockProvider{})
		require.NoError(t, err)
		require.Equal(t, ";", c.Options().ScopeSeparator)
	})
}

func TestResponseFormat_Valid(t *testing.T) {
	t.Parallel()

	for _, f := range []oauth.ResponseFormat{oauth.FormatJSON, oauth.FormatCSV, oauth.FormatXML, oauth.FormatQueryString} {
		require.True(t, f.Valid(), f)
	}
	require.False(t, oauth.ResponseFormat("yaml").Valid())
	require.False(t, oauth.ResponseFormat("").Valid())

	require.True(t, oauth.MethodGet.Valid())
	require.True(t, oauth.MethodPost.Valid())
	require.False(t, oauth.Method("put").Valid())
}
