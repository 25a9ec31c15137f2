package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

func newURLCmd(f *rootFlags) *cobra.Command {
	var params map[string]string
	cmd := &cobra.Command{
		Use:   "url <provider>",
		Short: "Print the authorization URL and state for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			c, err := f.client(args[0], oauth.WithRedirectHandler(func(authURL string, c *oauth.Client) error {
				_, err := fmt.Fprintf(out, "%s\nstate: %s\n", authURL, c.State())
				return err
			}))
			if err != nil {
				return err
			}
			_, err = c.Authorize(cmd.Context(), params)
			return err
		},
	}
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "extra authorization parameter as key=value")
	return cmd
}

type tokenOutput struct {
	Extra        oauth.Response  `json:"extra,omitempty"`
	User         *oauth.UserInfo `json:"user,omitempty"`
	Provider     string          `json:"provider"`
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Expires      string          `json:"expires,omitempty"`
}

func newTokenCmd(f *rootFlags) *cobra.Command {
	var (
		grant    string
		params   map[string]string
		userInfo bool
	)
	cmd := &cobra.Command{
		Use:   "token <provider>",
		Short: "Request an access token and print the provider response as JSON",
		Example: `  oauthkit token github -p code=abc123
  oauthkit token acme --grant client_credentials -p scope=read
  oauthkit token acme --grant refresh_token -p refresh_token=xyz --user`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := f.client(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			tok, err := c.GetAccessTokenByName(ctx, grant, params)
			if err != nil {
				return fmt.Errorf("%s: %w", oauth.KindOf(err), err)
			}

			res := tokenOutput{
				Provider:     c.Provider().Name(),
				AccessToken:  tok.TokenValue(),
				RefreshToken: tok.RefreshToken(),
				Extra:        tok.Values(),
			}
			if _, ok := tok.ExpiresIn(); ok {
				res.Expires = tok.Expires().UTC().Format(time.RFC3339)
			}
			if userInfo {
				if res.User, err = c.FetchUserInfo(ctx, tok); err != nil {
					return fmt.Errorf("%s: %w", oauth.KindOf(err), err)
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVarP(&grant, "grant", "g", "authorization_code", "grant type")
	cmd.Flags().StringToStringVarP(&params, "param", "p", nil, "token request parameter as key=value")
	cmd.Flags().BoolVar(&userInfo, "user", false, "also fetch the user profile with the issued token")
	return cmd
}
