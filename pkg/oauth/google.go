package oauth

import (
	"context"

	googleOAuth "golang.org/x/oauth2/google"
)

const (
	// GoogleProviderName is the identifier for Google OAuth provider.
	GoogleProviderName = "google"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleDefaultScopes returns the default scopes for Google OAuth.
func GoogleDefaultScopes() []string {
	return []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	}
}

// GoogleConfig holds Google OAuth configuration.
type GoogleConfig struct {
	ClientID     string   `env:"GOOGLE_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"GOOGLE_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"GOOGLE_OAUTH_REDIRECT_URL,required"`
	Scopes       []string `env:"GOOGLE_OAUTH_SCOPES" envSeparator:","`
}

// Google implements Provider for Google OAuth.
// Only verified emails are reported.
type Google struct{}

var (
	_ Provider         = Google{}
	_ ErrorChecker     = Google{}
	_ UserMapper       = Google{}
	_ UserInfoEnricher = Google{}
)

// NewGoogleClient creates a Client bound to Google.
// Returns an error if ClientID, ClientSecret or RedirectURL is empty.
func NewGoogleClient(cfg GoogleConfig, opts ...Option) (*Client, error) {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = GoogleDefaultScopes()
	}
	return NewClient(Config{
		ClientID:            cfg.ClientID,
		ClientSecret:        cfg.ClientSecret,
		RedirectURI:         cfg.RedirectURL,
		Scopes:              scopes,
		AuthorizationHeader: "Bearer",
	}, Google{}, opts...)
}

// Name returns the provider identifier.
func (Google) Name() string { return GoogleProviderName }

func (Google) AuthorizeURL() string { return googleOAuth.Endpoint.AuthURL }

func (Google) TokenURL() string { return googleOAuth.Endpoint.TokenURL }

func (Google) UserInfoURL(*AccessToken) string { return googleUserInfoURL }

// CheckError handles both token endpoint errors ({"error":"invalid_grant"})
// and API errors ({"error":{"code":401,"message":"..."}}).
func (Google) CheckError(resp Response) error {
	if apiErr, ok := resp["error"].(Response); ok {
		msg, _ := apiErr.String("message")
		code, _ := apiErr.String("code")
		if status, ok := apiErr.String("status"); ok && msg == "" {
			msg = status
		}
		return NewIdentityProviderError(msg, code, resp)
	}
	return checkRFC6749Error(resp)
}

func (Google) UserUID(resp Response, _ *AccessToken) (string, bool) {
	if id, ok := resp.String("id"); ok {
		return id, true
	}
	return resp.String("sub")
}

func (Google) UserScreenName(resp Response, _ *AccessToken) (string, bool) {
	return resp.String("name")
}

// UserEmail returns the email only if Google reports it as verified.
func (Google) UserEmail(resp Response, _ *AccessToken) (string, bool) {
	if !googleEmailVerified(resp) {
		return "", false
	}
	return resp.String("email")
}

// EnrichUserInfo copies the verification flag; no extra request is made.
func (Google) EnrichUserInfo(_ context.Context, _ Fetcher, _ *AccessToken, info *UserInfo) error {
	info.EmailVerified = info.Email != "" && googleEmailVerified(info.Raw)
	if p, ok := info.Raw.String("picture"); ok {
		info.Picture = p
	}
	return nil
}

func googleEmailVerified(resp Response) bool {
	for _, key := range []string{"verified_email", "email_verified"} {
		if v, ok := resp.String(key); ok {
			return v == "true"
		}
	}
	return false
}
