package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "STOCKWATCH_"

// LoadOptions controls where Load looks for configuration files.
type LoadOptions struct {
	// ConfigFile is an explicit config file path. When set it must exist.
	ConfigFile string
	// ConfigPaths are directories searched for config.yml when ConfigFile
	// is empty. Missing files are not an error.
	ConfigPaths []string
	// EnvFiles are dotenv files loaded before environment binding.
	// Missing files are skipped.
	EnvFiles []string
}

// DefaultLoadOptions searches the working directory and ./config for
// config.yml and loads .env when present.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		ConfigPaths: []string{".", "./config"},
		EnvFiles:    []string{".env"},
	}
}

// Load reads configuration from files and the environment, applies
// defaults and validates the result. Environment variables use the
// STOCKWATCH_ prefix with underscores mapping to nested keys, so
// STOCKWATCH_AUTH_JWT_SECRET sets auth.jwt.secret.
func Load(opts LoadOptions) (*Config, error) {
	for _, envFile := range opts.EnvFiles {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v := viper.New()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, path := range opts.ConfigPaths {
			v.AddConfigPath(path)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	bindEnvVars(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// bindEnvVars sets every STOCKWATCH_-prefixed environment variable on the
// viper instance under each nested key it could address, so variables
// resolve whether or not the config file mentions the key. Multi-word leaf
// names (STOCKWATCH_MARKET_API_KEY) need the progressive variants because
// the split point between section path and field name is ambiguous.
func bindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], envPrefix) {
			continue
		}
		key := strings.TrimPrefix(pair[0], envPrefix)
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, pair[1])
		}
	}
}

// envKeyVariants converts AUTH_JWT_SECRET into the nested keys it may
// address: auth.jwt.secret, auth.jwt_secret, auth_jwt_secret.
func envKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.ReplaceAll(lowerKey, "_", "."),
	}
	for i := 1; i < len(parts); i++ {
		prefix := strings.Join(parts[:i], ".")
		suffix := strings.Join(parts[i:], "_")
		variants = append(variants, prefix+"."+suffix)
	}

	seen := make(map[string]bool, len(variants))
	unique := variants[:0]
	for _, variant := range variants {
		if !seen[variant] {
			seen[variant] = true
			unique = append(unique, variant)
		}
	}
	return unique
}
