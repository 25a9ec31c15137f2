// Command oauthkit runs an OAuth login service and offers helpers to build
// authorization URLs and request tokens from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/oauthkit/internal/config"
	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	envFile   string
	providers string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	cmd := &cobra.Command{
		Use:          "oauthkit",
		Short:        "OAuth 2.0 login service and client tools",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&f.providers, "providers", "", "providers YAML file (overrides OAUTH_PROVIDERS_FILE)")

	cmd.AddCommand(
		newServeCmd(f),
		newURLCmd(f),
		newTokenCmd(f),
	)
	return cmd
}

func (f *rootFlags) load() (config.Config, map[string]config.Provider, error) {
	cfg, err := config.Load(f.envFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if f.providers != "" {
		cfg.ProvidersFile = f.providers
	}
	providers, err := config.LoadProviders(cfg.ProvidersFile, cfg.BaseURL)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, providers, nil
}

// client builds the client for a single named provider.
func (f *rootFlags) client(name string, opts ...oauth.Option) (*oauth.Client, error) {
	_, providers, err := f.load()
	if err != nil {
		return nil, err
	}
	p, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q, configured: %s", name, strings.Join(config.Names(providers), ", "))
	}
	return p.NewClient(opts...)
}
