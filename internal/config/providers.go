package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/oauthkit/pkg/oauth"
)

// Provider types accepted in the providers file.
const (
	TypeGoogle  = "google"
	TypeGitHub  = "github"
	TypeGeneric = "generic"
)

// Provider is one configured identity provider.
type Provider struct {
	Generic *oauth.GenericConfig
	Name    string
	Type    string
	Client  oauth.Config
}

// NewClient builds an OAuth client for the provider.
func (p Provider) NewClient(opts ...oauth.Option) (*oauth.Client, error) {
	cfg := p.Client
	switch p.Type {
	case TypeGoogle:
		if len(cfg.Scopes) == 0 {
			cfg.Scopes = oauth.GoogleDefaultScopes()
		}
		cfg.AuthorizationHeader = fallback(cfg.AuthorizationHeader, "Bearer")
		return oauth.NewClient(cfg, oauth.Google{}, opts...)
	case TypeGitHub:
		if len(cfg.Scopes) == 0 {
			cfg.Scopes = oauth.GitHubDefaultScopes()
		}
		cfg.AuthorizationHeader = fallback(cfg.AuthorizationHeader, "Bearer")
		return oauth.NewClient(cfg, oauth.GitHub{}, opts...)
	case TypeGeneric:
		if p.Generic == nil {
			return nil, fmt.Errorf("%w: %s has no endpoints", ErrInvalidProvider, p.Name)
		}
		g, err := oauth.NewGeneric(*p.Generic)
		if err != nil {
			return nil, err
		}
		return oauth.NewClient(cfg, g, opts...)
	default:
		return nil, fmt.Errorf("%w: %s has unknown type %q", ErrInvalidProvider, p.Name, p.Type)
	}
}

type providersFile struct {
	Providers map[string]map[string]any `yaml:"providers"`
}

// LoadProviders reads a YAML providers file. ${VAR} references are expanded from
// the environment before parsing so secrets can stay out of the file.
func LoadProviders(path, baseURL string) (map[string]Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrReadProviders, err)
	}
	return ParseProviders([]byte(os.ExpandEnv(string(data))), baseURL)
}

// ParseProviders parses providers YAML. A provider without redirectUri gets
// baseURL + "/auth/{name}/callback".
func ParseProviders(data []byte, baseURL string) (map[string]Provider, error) {
	var file providersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Join(ErrReadProviders, err)
	}
	if len(file.Providers) == 0 {
		return nil, ErrNoProviders
	}

	out := make(map[string]Provider, len(file.Providers))
	for name, raw := range file.Providers {
		p, err := parseProvider(name, raw, baseURL)
		if err != nil {
			return nil, err
		}
		out[name] = p
	}
	return out, nil
}

func parseProvider(name string, raw map[string]any, baseURL string) (Provider, error) {
	cfg, err := oauth.DecodeConfig(raw)
	if err != nil {
		return Provider{}, fmt.Errorf("provider %s: %w", name, err)
	}

	p := Provider{Name: name, Type: name}
	extra := maps.Clone(cfg.Extra)
	if t, ok := extra["type"].(string); ok && t != "" {
		p.Type = strings.ToLower(t)
	}
	delete(extra, "type")
	cfg.Extra = nil

	if cfg.RedirectURI == "" {
		cfg.RedirectURI = strings.TrimSuffix(baseURL, "/") + "/auth/" + name + "/callback"
	}

	switch p.Type {
	case TypeGoogle, TypeGitHub:
		if len(extra) > 0 {
			return Provider{}, fmt.Errorf("provider %s: %w: %s", name, oauth.ErrUnknownOption, sortedKeys(extra))
		}
	case TypeGeneric:
		g, err := decodeGeneric(extra)
		if err != nil {
			return Provider{}, fmt.Errorf("provider %s: %w", name, err)
		}
		g.Name = fallback(g.Name, name)
		g.UIDKey = fallback(g.UIDKey, cfg.UIDKey)
		p.Generic = &g
	default:
		return Provider{}, fmt.Errorf("%w: %s has unknown type %q", ErrInvalidProvider, name, p.Type)
	}

	p.Client = cfg
	return p, nil
}

func decodeGeneric(raw map[string]any) (oauth.GenericConfig, error) {
	var g oauth.GenericConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &g,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return g, err
	}
	if err := dec.Decode(raw); err != nil {
		return g, errors.Join(oauth.ErrUnknownOption, err)
	}
	return g, nil
}

// Names returns the provider names in sorted order.
func Names(providers map[string]Provider) []string {
	return slices.Sorted(maps.Keys(providers))
}

func sortedKeys(m map[string]any) string {
	return strings.Join(slices.Sorted(maps.Keys(m)), ", ")
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
