package oauth

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

// TokenSource returns an oauth2.TokenSource that serves tok until it expires and then
// refreshes it through the refresh_token grant. Use it with oauth2.NewClient to get an
// *http.Client that always sends a valid bearer token.
func (c *Client) TokenSource(ctx context.Context, tok *AccessToken) oauth2.TokenSource {
	src := &refreshSource{ctx: ctx, client: c}
	var initial *oauth2.Token
	if tok != nil {
		initial = tok.OAuth2()
		src.refreshToken = tok.RefreshToken()
	}
	return oauth2.ReuseTokenSource(initial, src)
}

type refreshSource struct {
	ctx          context.Context
	client       *Client
	refreshToken string
	mu           sync.Mutex
}

func (s *refreshSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, err := s.client.Refresh(s.ctx, s.refreshToken)
	if err != nil {
		return nil, err
	}
	// Providers that do not rotate refresh tokens omit them from the response.
	if rt := tok.RefreshToken(); rt != "" {
		s.refreshToken = rt
	}
	out := tok.OAuth2()
	out.RefreshToken = s.refreshToken
	return out, nil
}
