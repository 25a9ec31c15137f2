package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrymomot/oauthkit/pkg/logger"
)

// Config is the oauthkit server configuration read from the environment.
type Config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	BaseURL         string        `env:"BASE_URL" envDefault:"http://localhost:8080"`
	ProvidersFile   string        `env:"OAUTH_PROVIDERS_FILE" envDefault:"providers.yaml"`
	RedisURL        string        `env:"REDIS_URL"`
	Log             logger.Config
	StateTTL        time.Duration `env:"OAUTH_STATE_TTL" envDefault:"10m"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads .env files (missing files are ignored) and parses the environment.
// Variables already set in the process win over values from the files.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Join(ErrLoadEnvFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParseEnv, err)
	}
	return cfg, nil
}
