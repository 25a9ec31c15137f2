package config

import "errors"

var (
	ErrLoadEnvFile     = errors.New("config: failed to load env file")
	ErrParseEnv        = errors.New("config: failed to parse environment")
	ErrReadProviders   = errors.New("config: failed to read providers file")
	ErrNoProviders     = errors.New("config: no providers configured")
	ErrInvalidProvider = errors.New("config: invalid provider")
)
