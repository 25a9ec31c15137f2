package oauth

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ResponseFormat is the body encoding a provider uses for token and user-info responses.
type ResponseFormat string

const (
	FormatJSON        ResponseFormat = "json"
	FormatCSV         ResponseFormat = "csv"
	FormatXML         ResponseFormat = "xml"
	FormatQueryString ResponseFormat = "query-string"
)

// Valid reports whether f is one of the supported formats.
func (f ResponseFormat) Valid() bool {
	switch f {
	case FormatJSON, FormatCSV, FormatXML, FormatQueryString:
		return true
	}
	return false
}

// Method is the HTTP method used for the token request.
type Method string

const (
	MethodGet  Method = "get"
	MethodPost Method = "post"
)

// Valid reports whether m is get or post.
func (m Method) Valid() bool {
	return m == MethodGet || m == MethodPost
}

const (
	defaultScopeSeparator = " "
	defaultUIDKey         = "id"
)

// Config holds provider-independent OAuth client configuration.
// ClientID, ClientSecret and RedirectURI are fixed once a Client is built;
// the remaining fields can be changed through Client setters.
type Config struct {
	Headers             map[string]string `mapstructure:"headers" yaml:"headers"`
	Extra               map[string]any    `mapstructure:",remain" yaml:"-"`
	ClientID            string            `mapstructure:"clientId" yaml:"clientId" env:"CLIENT_ID,required"`
	ClientSecret        string            `mapstructure:"clientSecret" yaml:"clientSecret" env:"CLIENT_SECRET,required"`
	RedirectURI         string            `mapstructure:"redirectUri" yaml:"redirectUri" env:"REDIRECT_URI,required"`
	ScopeSeparator      string            `mapstructure:"scopeSeparator" yaml:"scopeSeparator" env:"SCOPE_SEPARATOR" envDefault:" "`
	ResponseType        ResponseFormat    `mapstructure:"responseType" yaml:"responseType" env:"RESPONSE_TYPE" envDefault:"json"`
	Method              Method            `mapstructure:"method" yaml:"method" env:"METHOD" envDefault:"post"`
	AuthorizationHeader string            `mapstructure:"authorizationHeader" yaml:"authorizationHeader" env:"AUTHORIZATION_HEADER"`
	UIDKey              string            `mapstructure:"uidKey" yaml:"uidKey" env:"UID_KEY" envDefault:"id"`
	State               string            `mapstructure:"state" yaml:"state" env:"STATE"`
	Scopes              []string          `mapstructure:"scopes" yaml:"scopes" env:"SCOPES" envSeparator:","`
}

// DecodeConfig decodes an option map (as read from YAML or JSON) into a Config.
// Keys that are not Config fields are kept in Config.Extra.
func DecodeConfig(raw map[string]any) (Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return Config{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Config{}, errors.Join(ErrInvalidOption, err)
	}
	return cfg, nil
}

// DecodeConfigStrict is DecodeConfig but fails with ErrUnknownOption
// when the map carries keys that are not Config fields.
func DecodeConfigStrict(raw map[string]any) (Config, error) {
	cfg, err := DecodeConfig(raw)
	if err != nil {
		return Config{}, err
	}
	if len(cfg.Extra) > 0 {
		keys := slices.Collect(maps.Keys(cfg.Extra))
		sort.Strings(keys)
		return Config{}, fmt.Errorf("%w: %s", ErrUnknownOption, strings.Join(keys, ", "))
	}
	return cfg, nil
}

func (c Config) withDefaults() Config {
	if c.ScopeSeparator == "" {
		c.ScopeSeparator = defaultScopeSeparator
	}
	if c.ResponseType == "" {
		c.ResponseType = FormatJSON
	}
	c.ResponseType = ResponseFormat(strings.ToLower(string(c.ResponseType)))
	if c.Method == "" {
		c.Method = MethodPost
	}
	c.Method = Method(strings.ToLower(string(c.Method)))
	if c.UIDKey == "" {
		c.UIDKey = defaultUIDKey
	}
	c.Scopes = slices.Clone(c.Scopes)
	c.Headers = maps.Clone(c.Headers)
	if c.Headers == nil {
		c.Headers = map[string]string{}
	}
	c.Extra = maps.Clone(c.Extra)
	return c
}

func (c Config) validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	if c.RedirectURI == "" {
		return ErrInvalidRedirectURI
	}
	if _, err := url.Parse(c.RedirectURI); err != nil {
		return errors.Join(ErrInvalidRedirectURI, err)
	}
	if !c.ResponseType.Valid() {
		return fmt.Errorf("%w: response type %q", ErrInvalidOption, c.ResponseType)
	}
	if !c.Method.Valid() {
		return fmt.Errorf("%w: method %q", ErrInvalidOption, c.Method)
	}
	return nil
}
