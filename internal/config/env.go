package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
)

// Env is the process environment capitol reads. A .env file, when present,
// fills variables that are not already set.
type Env struct {
	APIKey   string `env:"CONGRESS_API_KEY"`
	BaseURL  string `env:"CONGRESS_API_BASE_URL"`
	LogLevel string `env:"LOG_LEVEL"`
	Home     string `env:"CAPITOL_HOME"`
}

// LoadEnv loads the given dotenv files (".env" when none are given) and
// unmarshals the environment. Missing dotenv files are not an error.
func LoadEnv(dotenvFiles ...string) (*Env, error) {
	_ = godotenv.Load(dotenvFiles...)

	var e Env
	if _, err := env.UnmarshalFromEnviron(&e); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return &e, nil
}

// BaseDir returns CAPITOL_HOME when set, otherwise ~/.capitol.
func (e *Env) BaseDir() (string, error) {
	if e.Home != "" {
		return e.Home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".capitol"), nil
}

// ApplyEnv overlays environment settings onto cfg.
func ApplyEnv(cfg *Config, e *Env) *Config {
	if e.BaseURL != "" {
		cfg.APIBaseURL = e.BaseURL
	}
	return cfg
}
