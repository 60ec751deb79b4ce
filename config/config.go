package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lukehollenback/gobitx/exchange/bitx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	EnvKey      = "BITX_KEY"
	EnvSecret   = "BITX_SECRET"
	EnvHostname = "BITX_HOSTNAME"
	EnvPort     = "BITX_PORT"
	EnvPair     = "BITX_PAIR"
	EnvTimeout  = "BITX_TIMEOUT"
)

//
// Config holds client settings. Zero values fall back to the client's defaults.
//
type Config struct {
	Key    string `yaml:"-"`
	Secret string `yaml:"-"`

	Hostname string        `yaml:"hostname"`
	Port     int           `yaml:"port"`
	Pair     string        `yaml:"pair"`
	Timeout  time.Duration `yaml:"timeout"`
	CA       string        `yaml:"ca"`
	Workers  int           `yaml:"workers"`
	Debug    bool          `yaml:"debug"`
}

//
// Load reads the YAML file at path (skipped when path is empty), then applies values from the
// provided .env files (".env" when none are given) and finally from the environment, in increasing
// order of precedence. Missing .env files are skipped, but malformed ones are an error.
//
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	dotenv := map[string]string{}

	for _, envFile := range envFiles {
		values, err := godotenv.Read(envFile)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("failed to parse env file %s: %w", envFile, err)
		}

		for k, v := range values {
			dotenv[k] = v
		}
	}

	lookup := func(key string) string {
		if value := os.Getenv(key); value != "" {
			return value
		}

		return dotenv[key]
	}

	cfg.Key = lookup(EnvKey)
	cfg.Secret = lookup(EnvSecret)

	if v := lookup(EnvHostname); v != "" {
		cfg.Hostname = v
	}

	if v := lookup(EnvPair); v != "" {
		cfg.Pair = v
	}

	if v := lookup(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvPort, v, err)
		}

		cfg.Port = port
	}

	if v := lookup(EnvTimeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvTimeout, v, err)
		}

		cfg.Timeout = timeout
	}

	return cfg, nil
}

//
// HasCredentials reports whether both halves of the credential pair are set.
//
func (c *Config) HasCredentials() bool {
	return c.Key != "" && c.Secret != ""
}

//
// Options converts the config into client options that log through the provided logger.
//
func (c *Config) Options(logger *zap.Logger) *bitx.Options {
	return &bitx.Options{
		Hostname: c.Hostname,
		Port:     c.Port,
		Pair:     c.Pair,
		Timeout:  c.Timeout,
		CA:       c.CA,
		Workers:  c.Workers,
		Logger:   logger,
	}
}
