package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultEnvFile is the optional dotenv file read by Load.
const DefaultEnvFile = ".env"

// binding maps a nested config key onto the environment variable that sets it.
type binding struct {
	key    string
	envVar string
}

var bindings = []binding{
	{"server.host", "HOST"},
	{"server.port", "PORT"},
	{"server.environment", "ENVIRONMENT"},
	{"server.log_level", "LOG_LEVEL"},
	{"server.allowed_origins", "ALLOWED_ORIGINS"},
	{"server.shutdown_timeout", "SHUTDOWN_TIMEOUT"},
	{"database.url", "DATABASE_URL"},
	{"database.max_open_conns", "DATABASE_MAX_OPEN_CONNS"},
	{"supabase.url", "SUPABASE_URL"},
	{"supabase.anon_key", "SUPABASE_ANON_KEY"},
	{"supabase.service_role_key", "SUPABASE_SERVICE_ROLE_KEY"},
	{"supabase.jwt_secret", "SUPABASE_JWT_SECRET"},
	{"auth.email_domain", "EMAIL_DOMAIN"},
	{"auth.email_redirect_url", "EMAIL_REDIRECT_URL"},
	{"auth.request_timeout", "AUTH_REQUEST_TIMEOUT"},
	{"auth.signup_timeout", "AUTH_SIGNUP_TIMEOUT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.allowed_origins", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("auth.email_domain", "gmu.edu")
	v.SetDefault("auth.email_redirect_url", "http://localhost:3000/auth/verify")
	v.SetDefault("auth.request_timeout", "30s")
	v.SetDefault("auth.signup_timeout", "20s")
}

// Load reads configuration from environment variables, falling back to the
// optional .env file in the working directory and then to built-in defaults.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom(DefaultEnvFile)
}

// LoadFrom is Load with an explicit dotenv path. A missing file is not an
// error; pass "" to skip the file entirely.
func LoadFrom(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		if err := applyEnvFile(v, envFile); err != nil {
			return nil, err
		}
	}

	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", b.envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Server.AllowedOrigins = cleanList(cfg.Server.AllowedOrigins)
	cfg.Server.LogLevel = strings.ToLower(cfg.Server.LogLevel)
	cfg.Auth.EmailDomain = strings.ToLower(strings.TrimPrefix(cfg.Auth.EmailDomain, "@"))
	cfg.Supabase.URL = strings.TrimRight(cfg.Supabase.URL, "/")

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyEnvFile layers dotenv values over the defaults. Real environment
// variables still win because they are bound afterwards.
func applyEnvFile(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error reading env file %s: %w", path, err)
	}

	fileV := viper.New()
	fileV.SetConfigFile(path)
	fileV.SetConfigType("env")
	if err := fileV.ReadInConfig(); err != nil {
		return fmt.Errorf("error parsing env file %s: %w", path, err)
	}

	for _, b := range bindings {
		name := strings.ToLower(b.envVar)
		if fileV.IsSet(name) {
			v.SetDefault(b.key, fileV.Get(name))
		}
	}
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
