// Package oauth provides a generic OAuth2 client that concrete identity providers specialize.
//
// A provider supplies its endpoints through the Provider interface and may add
// capabilities (ErrorChecker, UserMapper, TokenKeyProvider, UserInfoEnricher).
// Everything else is shared by Client: authorization URLs with CSRF state,
// grant exchange, bearer headers and decoding of JSON, CSV, XML and
// query-string response bodies.
//
// # Features
//
//   - Provider interface plus Google, GitHub and config-driven Generic providers
//   - Built-in authorization_code, password, client_credentials and refresh_token grants,
//     extension grants via NewGrant and WithGrant
//   - Random per-request state, optional StateStore for single-use verification
//   - Redirect hook so hosts decide how to send the user to the provider
//   - Pluggable Transport; the default uses net/http and honors oauth2.HTTPClient
//   - Interop with golang.org/x/oauth2 tokens and token sources
//   - Sentinel errors with "oauth:" prefix and KindOf classification
//
// # Usage
//
// Google client setup:
//
//	client, err := oauth.NewGoogleClient(oauth.GoogleConfig{
//		ClientID:     os.Getenv("GOOGLE_OAUTH_CLIENT_ID"),
//		ClientSecret: os.Getenv("GOOGLE_OAUTH_CLIENT_SECRET"),
//		RedirectURL:  "https://example.com/auth/google/callback",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Redirect the user (login handler)
//	_, err = client.Authorize(ctx, nil) // with WithRedirectHandler or SetRedirectHandler
//
//	// Verify state and exchange the code (callback handler)
//	if err := client.VerifyState(ctx, r.URL.Query().Get("state")); err != nil {
//		// reject
//	}
//	token, err := client.Exchange(ctx, r.URL.Query().Get("code"))
//
//	// Fetch user info
//	user, err := client.FetchUserInfo(ctx, token)
//
// # Custom Providers
//
// Implement Provider; add optional capabilities as needed:
//
//	type MyProvider struct{}
//
//	func (MyProvider) Name() string                          { return "my-provider" }
//	func (MyProvider) AuthorizeURL() string                  { return "https://id.example.com/authorize" }
//	func (MyProvider) TokenURL() string                      { return "https://id.example.com/token" }
//	func (MyProvider) UserInfoURL(*oauth.AccessToken) string { return "https://api.example.com/me" }
//
//	client, err := oauth.NewClient(oauth.Config{...}, MyProvider{})
//
// Providers without an ErrorChecker get DefaultErrorChecker, so error
// responses are never turned into tokens. Providers without a UserMapper
// read "id" (Config.UIDKey), "name" and "email".
//
// # Testing
//
// Use WithHTTPClient to inject a test server client, or WithTransport to
// stub the transport entirely:
//
//	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//		// mock responses
//	}))
//	defer ts.Close()
//
//	client, err := oauth.NewClient(cfg, provider, oauth.WithHTTPClient(ts.Client()))
//
// # Error Handling
//
//   - ErrInvalidGrant: unknown grant name or zero Grant, raised before any request
//   - ErrReservedParameter: params override client_id, client_secret, redirect_uri or grant_type
//   - ErrMissingParameter: a grant's required parameter is absent
//   - ErrMalformedResponse: body not parseable in the configured format
//   - *IdentityProviderError (errors.Is ErrIdentityProvider): provider-declared error
//   - ErrMissingToken: successful response without an access token
//   - ErrFetchFailed, ErrRequestFailed: transport failures, returned unchanged
//
// Use errors.Is / errors.As, or KindOf for a switchable classification:
//
//	var perr *oauth.IdentityProviderError
//	if errors.As(err, &perr) {
//		log.Println(perr.Code, perr.Message)
//	}
//
// # Security
//
//   - Always call VerifyState on the callback to prevent CSRF attacks
//   - Use a StateStore when login and callback may hit different instances
//   - Use HTTPS redirect URIs in production
//   - Tokens are not persisted by this package; store them encrypted if you must
package oauth
