package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/oauthkit/internal/server"
	"github.com/dmitrymomot/oauthkit/pkg/oauth"
	"github.com/dmitrymomot/oauthkit/pkg/statestore"
)

func newProviderServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.FormValue("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"bad code"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":42,"login":"octo","email":"octo@example.com"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, opts ...server.Option) http.Handler {
	t.Helper()
	idp := newProviderServer(t)

	provider, err := oauth.NewGeneric(oauth.GenericConfig{
		Name:         "acme",
		AuthorizeURL: idp.URL + "/authorize",
		TokenURL:     idp.URL + "/token",
		UserInfoURL:  idp.URL + "/me",
		NameKey:      "login",
	})
	require.NoError(t, err)

	store := statestore.NewMemory()
	t.Cleanup(func() { _ = store.Close() })

	client, err := oauth.NewClient(oauth.Config{
		ClientID:            "id",
		ClientSecret:        "secret",
		RedirectURI:         "https://app.test/auth/acme/callback",
		AuthorizationHeader: "Bearer",
	}, provider, oauth.WithStateStore(store, time.Minute))
	require.NoError(t, err)

	return server.New(map[string]*oauth.Client{"acme": client}, opts...).Handler()
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := get(t, h, "/auth/acme?prompt=consent&state=attacker")
	require.Equal(t, http.StatusFound, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/authorize", loc.Path)
	require.Equal(t, "consent", loc.Query().Get("prompt"))
	require.Equal(t, "id", loc.Query().Get("client_id"))

	state := loc.Query().Get("state")
	require.Len(t, state, 32)
	return state
}

func TestCallback(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(t)
		state := login(t, h)

		rec := get(t, h, "/auth/acme/callback?code=good&state="+state)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		var user server.User
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&user))
		require.Equal(t, server.User{
			Provider: "acme",
			ID:       "42",
			Name:     "octo",
			Email:    "octo@example.com",
		}, user)
		require.NotContains(t, rec.Body.String(), `"tok"`)

		rec = get(t, h, "/auth/acme/callback?code=good&state="+state)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "state_mismatch")
	})

	t.Run("unknown state", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(t)

		rec := get(t, h, "/auth/acme/callback?code=good&state=forged")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "state_mismatch")
	})

	t.Run("provider error", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(t)

		rec := get(t, h, "/auth/acme/callback?error=access_denied&error_description=denied")
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "access_denied")
	})

	t.Run("missing code", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(t)
		state := login(t, h)

		rec := get(t, h, "/auth/acme/callback?state="+state)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Contains(t, rec.Body.String(), "missing_parameter")
	})

	t.Run("rejected code", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(t)
		state := login(t, h)

		rec := get(t, h, "/auth/acme/callback?code=bad&state="+state)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Body.String(), "identity_provider")
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(t)

		require.Equal(t, http.StatusNotFound, get(t, h, "/auth/nope").Code)
		require.Equal(t, http.StatusNotFound, get(t, h, "/auth/nope/callback").Code)
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	t.Run("live", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(t)

		rec := get(t, h, "/health/live")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(t, server.WithCheck("store", func(context.Context) error { return nil }))

		rec := get(t, h, "/health/ready")
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"status":"healthy","checks":{"store":{"status":"healthy"}}}`, rec.Body.String())
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()
		h := newTestServer(t,
			server.WithCheck("store", func(context.Context) error { return nil }),
			server.WithCheck("redis", func(context.Context) error { return errors.New("connection refused") }),
		)

		rec := get(t, h, "/health/ready")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		require.JSONEq(t, `{
			"status":"unhealthy",
			"checks":{
				"store":{"status":"healthy"},
				"redis":{"status":"unhealthy","error":"connection refused"}
			}
		}`, rec.Body.String())
	})
}

func TestRun(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	hookCalled := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, server.RunConfig{
			Addr:    "127.0.0.1:0",
			Handler: http.NotFoundHandler(),
			ShutdownHooks: []func(context.Context) error{
				func(context.Context) error {
					close(hookCalled)
					return nil
				},
			},
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	<-hookCalled
}

func TestRun_ListenError(t *testing.T) {
	t.Parallel()

	hookErr := errors.New("close store")
	var calls int
	err := server.Run(context.Background(), server.RunConfig{
		Addr: "256.0.0.1:bad",
		ShutdownHooks: []func(context.Context) error{
			func(context.Context) error {
				calls++
				return nil
			},
			func(context.Context) error {
				calls++
				return hookErr
			},
		},
	})
	require.Error(t, err)
	require.ErrorIs(t, err, hookErr)
	require.Equal(t, 2, calls)
}
