package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Supabase SupabaseConfig `mapstructure:"supabase" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"             validate:"required"`
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	Environment     string        `mapstructure:"environment"      validate:"required,oneof=development staging production test"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"  validate:"dive,required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
}

// SupabaseConfig points at the hosted identity provider.
// The anon key is used for user-scoped calls and the service-role key for
// admin calls. JWTSecret is optional; when set, access tokens are verified
// locally instead of round-tripping to the provider.
type SupabaseConfig struct {
	URL            string `mapstructure:"url"              validate:"required,url"`
	AnonKey        string `mapstructure:"anon_key"         validate:"required"`
	ServiceRoleKey string `mapstructure:"service_role_key" validate:"required"`
	JWTSecret      string `mapstructure:"jwt_secret"`
}

// AuthConfig contains campus and signup settings.
type AuthConfig struct {
	EmailDomain      string        `mapstructure:"email_domain"       validate:"required,fqdn"`
	EmailRedirectURL string        `mapstructure:"email_redirect_url" validate:"required,url"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"    validate:"gt=0"`
	SignupTimeout    time.Duration `mapstructure:"signup_timeout"     validate:"gt=0"`
}

// Address returns the host:port the HTTP server listens on.
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsProduction reports whether the server runs in production.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}
