package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	githubOAuth "golang.org/x/oauth2/github"
)

const (
	// GitHubProviderName is the identifier for GitHub OAuth provider.
	GitHubProviderName = "github"
	githubAPIURL       = "https://api.github.com"
)

// GitHubDefaultScopes returns the default scopes for GitHub OAuth.
func GitHubDefaultScopes() []string {
	return []string{"read:user", "user:email"}
}

// GitHubConfig holds GitHub OAuth configuration.
type GitHubConfig struct {
	ClientID     string   `env:"GITHUB_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GITHUB_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GITHUB_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GITHUB_OAUTH_SCOPES" envSeparator:","`
}

// GitHub implements Provider for GitHub OAuth.
// The email is resolved from /user/emails, preferring the primary verified address.
type GitHub struct {
	// APIURL overrides https://api.github.com (GitHub Enterprise, tests).
	APIURL string
}

var (
	_ Provider         = GitHub{}
	_ ErrorChecker     = GitHub{}
	_ UserMapper       = GitHub{}
	_ UserInfoEnricher = GitHub{}
)

// NewGitHubClient creates a Client bound to GitHub.
// Returns an error if ClientID, ClientSecret or RedirectURL is empty.
func NewGitHubClient(cfg GitHubConfig, opts ...Option) (*Client, error) {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = GitHubDefaultScopes()
	}
	return NewClient(Config{
		ClientID:            cfg.ClientID,
		ClientSecret:        cfg.ClientSecret,
		RedirectURI:         cfg.RedirectURL,
		Scopes:              scopes,
		AuthorizationHeader: "Bearer",
	}, GitHub{}, opts...)
}

// Name returns the provider identifier.
func (GitHub) Name() string { return GitHubProviderName }

func (GitHub) AuthorizeURL() string { return githubOAuth.Endpoint.AuthURL }

func (GitHub) TokenURL() string { return githubOAuth.Endpoint.TokenURL }

func (g GitHub) UserInfoURL(*AccessToken) string { return g.api() + "/user" }

// CheckError handles OAuth errors from the token endpoint and REST API errors,
// which carry a "message" and no "id".
func (GitHub) CheckError(resp Response) error {
	if err := checkRFC6749Error(resp); err != nil {
		return err
	}
	if msg, ok := resp.String("message"); ok {
		if _, hasID := resp.Value("id"); !hasID {
			code, _ := resp.String("status")
			return NewIdentityProviderError(msg, code, resp)
		}
	}
	return nil
}

func (GitHub) UserUID(resp Response, _ *AccessToken) (string, bool) {
	return resp.String("id")
}

// UserScreenName returns the profile name, falling back to the login.
func (GitHub) UserScreenName(resp Response, _ *AccessToken) (string, bool) {
	if name, ok := resp.String("name"); ok {
		return name, true
	}
	return resp.String("login")
}

func (GitHub) UserEmail(resp Response, _ *AccessToken) (string, bool) {
	return resp.String("email")
}

// EnrichUserInfo resolves the primary verified email. If none is verified the
// public profile email is kept and EmailVerified stays false.
func (g GitHub) EnrichUserInfo(ctx context.Context, f Fetcher, token *AccessToken, info *UserInfo) error {
	if p, ok := info.Raw.String("avatar_url"); ok {
		info.Picture = p
	}

	body, err := f.Fetch(ctx, g.api()+"/user/emails", token)
	if err != nil {
		return err
	}

	var emails []githubEmail
	if err := json.Unmarshal(body, &emails); err != nil {
		// Errors come back as an object rather than a list.
		if resp, decodeErr := Decode(body, FormatJSON); decodeErr == nil {
			if checkErr := g.CheckError(resp); checkErr != nil {
				return checkErr
			}
		}
		return errors.Join(ErrMalformedResponse, fmt.Errorf("decode emails: %w", err))
	}

	if email, ok := primaryVerifiedEmail(emails); ok {
		info.Email = email
		info.EmailVerified = true
	}
	return nil
}

func (g GitHub) api() string {
	if g.APIURL != "" {
		return strings.TrimSuffix(g.APIURL, "/")
	}
	return githubAPIURL
}

func primaryVerifiedEmail(emails []githubEmail) (string, bool) {
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, true
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, true
		}
	}
	return "", false
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}
