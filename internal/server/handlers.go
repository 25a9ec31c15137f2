package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

// User is the callback response body. Tokens are never returned to the browser.
type User struct {
	Provider      string `json:"provider"`
	ID            string `json:"id"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email,omitempty"`
	Picture       string `json:"picture,omitempty"`
	EmailVerified bool   `json:"email_verified"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (s *Server) client(w http.ResponseWriter, r *http.Request) (*oauth.Client, bool) {
	name := chi.URLParam(r, "provider")
	c, ok := s.clients[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown_provider", Message: name})
		return nil, false
	}
	return c, true
}

// login redirects to the provider. Query parameters other than state are
// forwarded as extra authorization parameters (prompt, login_hint and similar).
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	c, ok := s.client(w, r)
	if !ok {
		return
	}

	params := make(map[string]string)
	for k, v := range r.URL.Query() {
		if k != "state" && len(v) > 0 {
			params[k] = v[0]
		}
	}

	authURL, err := c.AuthorizationURL(r.Context(), params)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "failed to build authorization url",
			slog.String("provider", c.Provider().Name()),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *Server) callback(w http.ResponseWriter, r *http.Request) {
	c, ok := s.client(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	q := r.URL.Query()
	log := s.logger.With(slog.String("provider", c.Provider().Name()))

	if e := q.Get("error"); e != "" {
		log.WarnContext(ctx, "provider returned an error", slog.String("error", e))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: e, Message: q.Get("error_description")})
		return
	}

	if err := c.VerifyState(ctx, q.Get("state")); err != nil {
		log.WarnContext(ctx, "state verification failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: oauth.KindStateMismatch.String()})
		return
	}

	code := q.Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: oauth.KindMissingParameter.String(), Message: "code"})
		return
	}

	token, err := c.Exchange(ctx, code)
	if err != nil {
		s.writeError(w, r, log, "code exchange failed", err)
		return
	}

	info, err := c.FetchUserInfo(ctx, token)
	if err != nil {
		s.writeError(w, r, log, "user info request failed", err)
		return
	}

	log.InfoContext(ctx, "user authenticated", slog.String("uid", info.ID))
	writeJSON(w, http.StatusOK, User{
		Provider:      c.Provider().Name(),
		ID:            info.ID,
		Name:          info.Name,
		Email:         info.Email,
		Picture:       info.Picture,
		EmailVerified: info.EmailVerified,
	})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, msg string, err error) {
	kind := oauth.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case oauth.KindIdentityProvider:
		status = http.StatusUnauthorized
	case oauth.KindTransport, oauth.KindMalformedResponse, oauth.KindMissingToken:
		status = http.StatusBadGateway
	}
	log.ErrorContext(r.Context(), msg, slog.String("kind", kind.String()), slog.String("error", err.Error()))
	writeJSON(w, status, errorResponse{Error: kind.String()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
