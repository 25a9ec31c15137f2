package oauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

func newTestGitHubClient(t *testing.T, handler http.Handler) *oauth.Client {
	t.Helper()
	transport := &githubRewriteTransport{base: http.DefaultTransport, handler: handler}
	c, err := oauth.NewGitHubClient(
		oauth.GitHubConfig{
			ClientID:     "test-id",
			ClientSecret: "test-secret",
			RedirectURL:  "https://example.com/callback",
		},
		oauth.WithHTTPClient(&http.Client{Transport: transport}),
	)
	require.NoError(t, err)
	return c
}

func githubToken(t *testing.T) *oauth.AccessToken {
	t.Helper()
	tok, err := oauth.NewAccessToken(oauth.Response{"access_token": "test-token"}, oauth.TokenKeys{})
	require.NoError(t, err)
	return tok
}

func githubUserHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":         42,
		"login":      "octocat",
		"name":       "Octocat",
		"avatar_url": "https://example.com/octocat.png",
	})
}

func TestNewGitHubClient(t *testing.T) {
	t.Parallel()

	t.Run("missing client ID", func(t *testing.T) {
		t.Parallel()
		c, err := oauth.NewGitHubClient(oauth.GitHubConfig{
			ClientSecret: "test-secret",
			RedirectURL:  "https://example.com/callback",
		})
		require.ErrorIs(t, err, oauth.ErrMissingClientID)
		require.Nil(t, c)
	})

	t.Run("missing client secret", func(t *testing.T) {
		t.Parallel()
		c, err := oauth.NewGitHubClient(oauth.GitHubConfig{
			ClientID:    "test-id",
			RedirectURL: "https://example.com/callback",
		})
		require.ErrorIs(t, err, oauth.ErrMissingClientSecret)
		require.Nil(t, c)
	})
}

func TestGitHub_AuthorizationURL(t *testing.T) {
	t.Parallel()

	c := newTestGitHubClient(t, http.NotFoundHandler())

	u, err := c.AuthorizationURL(context.Background(), map[string]string{"state": "test-state"})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(u, "https://github.com/login/oauth/authorize?"))
	require.Contains(t, u, "state=test-state")
	require.Contains(t, u, "redirect_uri=")
	require.Contains(t, u, "example.com")
	require.Contains(t, u, "scope=read%3Auser+user%3Aemail")
}

func TestGitHubDefaultScopes(t *testing.T) {
	t.Parallel()
	scopes := oauth.GitHubDefaultScopes()
	require.Len(t, scopes, 2)
	require.Contains(t, scopes, "read:user")
	require.Contains(t, scopes, "user:email")
}

func TestGitHub_Exchange(t *testing.T) {
	t.Parallel()

	t.Run("successful exchange", func(t *testing.T) {
		t.Parallel()

		var accept string
		c := newTestGitHubClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accept = r.Header.Get("Accept")
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "gh-test-token",
				"token_type":   "bearer",
				"scope":        "read:user,user:email",
			})
		}))

		token, err := c.Exchange(context.Background(), "test-code")
		require.NoError(t, err)
		require.Equal(t, "gh-test-token", token.TokenValue())
		require.Equal(t, "read:user,user:email", token.Extra("scope"))
		require.Equal(t, "application/json", accept)
	})

	t.Run("error with 200 status", func(t *testing.T) {
		t.Parallel()

		c := newTestGitHubClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "bad_verification_code",
				"error_description": "The code passed is incorrect or expired.",
			})
		}))

		token, err := c.Exchange(context.Background(), "bad-code")
		var perr *oauth.IdentityProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "The code passed is incorrect or expired.", perr.Message)
		require.Equal(t, "bad_verification_code", perr.Code)
		require.Nil(t, token)
	})
}

func TestGitHub_FetchUserInfo(t *testing.T) {
	t.Parallel()

	t.Run("primary verified email", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/user", githubUserHandler)
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"email": "secondary@example.com", "primary": false, "verified": true},
				{"email": "primary@example.com", "primary": true, "verified": true},
			})
		})

		c := newTestGitHubClient(t, mux)

		user, err := c.FetchUserInfo(context.Background(), githubToken(t))
		require.NoError(t, err)
		require.Equal(t, "42", user.ID)
		require.Equal(t, "primary@example.com", user.Email)
		require.True(t, user.EmailVerified)
		require.Equal(t, "Octocat", user.Name)
		require.Equal(t, "https://example.com/octocat.png", user.Picture)
	})

	t.Run("fallback verified email", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/user", githubUserHandler)
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"email": "unverified@example.com", "primary": true, "verified": false},
				{"email": "verified@example.com", "primary": false, "verified": true},
			})
		})

		c := newTestGitHubClient(t, mux)

		user, err := c.FetchUserInfo(context.Background(), githubToken(t))
		require.NoError(t, err)
		require.Equal(t, "verified@example.com", user.Email)
		require.True(t, user.EmailVerified)
	})

	t.Run("no verified email", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/user", githubUserHandler)
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"email": "unverified@example.com", "primary": true, "verified": false},
			})
		})

		c := newTestGitHubClient(t, mux)

		user, err := c.FetchUserInfo(context.Background(), githubToken(t))
		require.NoError(t, err)
		require.Empty(t, user.Email)
		require.False(t, user.EmailVerified)
	})

	t.Run("screen name falls back to login", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":7,"login":"ghost","name":null}`))
		})
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		c := newTestGitHubClient(t, mux)

		user, err := c.FetchUserInfo(context.Background(), githubToken(t))
		require.NoError(t, err)
		require.Equal(t, "7", user.ID)
		require.Equal(t, "ghost", user.Name)
	})

	t.Run("bad credentials", func(t *testing.T) {
		t.Parallel()

		c := newTestGitHubClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials","status":"401"}`))
		}))

		user, err := c.FetchUserInfo(context.Background(), githubToken(t))
		var perr *oauth.IdentityProviderError
		require.ErrorAs(t, err, &perr)
		require.Equal(t, "Bad credentials", perr.Message)
		require.Equal(t, "401", perr.Code)
		require.Nil(t, user)
	})

	t.Run("emails endpoint error", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/user", githubUserHandler)
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		})

		c := newTestGitHubClient(t, mux)

		user, err := c.FetchUserInfo(context.Background(), githubToken(t))
		require.ErrorIs(t, err, oauth.ErrIdentityProvider)
		require.Nil(t, user)
	})

	t.Run("bad emails JSON", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/user", githubUserHandler)
		mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("not-json"))
		})

		c := newTestGitHubClient(t, mux)

		user, err := c.FetchUserInfo(context.Background(), githubToken(t))
		require.ErrorIs(t, err, oauth.ErrMalformedResponse)
		require.Nil(t, user)
	})
}

// githubRewriteTransport intercepts requests to GitHub endpoints and routes them
// to a local handler instead.
type githubRewriteTransport struct {
	base    http.RoundTripper
	handler http.Handler
}

func (t *githubRewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Host, "github.com") {
		recorder := httptest.NewRecorder()
		t.handler.ServeHTTP(recorder, req)
		return recorder.Result(), nil
	}
	return t.base.RoundTrip(req)
}
