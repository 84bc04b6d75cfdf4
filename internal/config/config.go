// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 0 // streams may run for the whole lesson
	defaultDatabasePath              = "./data/coursecast.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultDatabaseEnableWAL         = true
	defaultMigrationsPath            = "file://./migrations"
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultAuthJWTSecret             = "coursecast-development-secret"
	defaultAuthTokenTTL              = 12 * time.Hour
	defaultAuthAllowTokenMint        = false
	defaultMediaLibraryPath          = "./data/media"
	defaultPlayerAPIBaseURL          = "http://localhost:8080"
	defaultPlayerTokenPlacement      = "header"
	defaultPlayerPrecheckTimeout     = 10 * time.Second
	defaultPlayerEmbedHost           = "www.youtube.com"
	defaultPlayerAutoplay            = false
	defaultPlayerKeyringService      = "coursecast"
	minJWTSecretLength               = 16
	envPrefix                        = "COURSECAST"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	Media    MediaConfig
	Player   PlayerConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
	EnableWAL         bool
	MigrationsPath    string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// AuthConfig holds viewer token configuration
type AuthConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	AllowTokenMint bool // enables POST /api/tokens for local development
}

// MediaConfig holds media library configuration
type MediaConfig struct {
	LibraryPath      string
	SupportedFormats []string
}

// PlayerConfig holds playback controller configuration
type PlayerConfig struct {
	APIBaseURL      string
	CredentialKeys  []string
	TokenPlacement  string
	PrecheckTimeout time.Duration
	EmbedHost       string
	Autoplay        bool
	KeyringService  string
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	cfg, _, err := load()
	return cfg, err
}

// LoadAndWatch loads configuration and, when a config file is in use, calls
// onChange with the re-read configuration each time the file changes.
// Invalid edits are reported through onError and otherwise ignored.
func LoadAndWatch(onChange func(*Config), onError func(error)) (*Config, error) {
	cfg, v, err := load()
	if err != nil {
		return nil, err
	}

	if v.ConfigFileUsed() == "" {
		return cfg, nil
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := unmarshal(v)
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		onChange(next)
	})
	v.WatchConfig()

	return cfg, nil
}

func load() (*Config, *viper.Viper, error) {
	// .env files are optional in production and CI where env vars are set directly
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/coursecast")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, nil, fmt.Errorf("error reading config: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)
	v.SetDefault("database.enablewal", defaultDatabaseEnableWAL)
	v.SetDefault("database.migrationspath", defaultMigrationsPath)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("auth.jwtsecret", defaultAuthJWTSecret)
	v.SetDefault("auth.tokenttl", defaultAuthTokenTTL)
	v.SetDefault("auth.allowtokenmint", defaultAuthAllowTokenMint)

	v.SetDefault("media.librarypath", defaultMediaLibraryPath)
	v.SetDefault("media.supportedformats", []string{"mp4", "webm", "mov", "m4v"})

	v.SetDefault("player.apibaseurl", defaultPlayerAPIBaseURL)
	v.SetDefault("player.credentialkeys", []string{"access_token", "token"})
	v.SetDefault("player.tokenplacement", defaultPlayerTokenPlacement)
	v.SetDefault("player.prechecktimeout", defaultPlayerPrecheckTimeout)
	v.SetDefault("player.embedhost", defaultPlayerEmbedHost)
	v.SetDefault("player.autoplay", defaultPlayerAutoplay)
	v.SetDefault("player.keyringservice", defaultPlayerKeyringService)
}

// UsesDefaultSecret reports whether the development JWT secret is in use
func (c *Config) UsesDefaultSecret() bool {
	return c.Auth.JWTSecret == defaultAuthJWTSecret
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("invalid write timeout: %v (must be >= 0)", c.Server.WriteTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	if len(c.Auth.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("invalid jwt secret: must be at least %d characters", minJWTSecretLength)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid token ttl: %v (must be > 0)", c.Auth.TokenTTL)
	}

	if err := c.Player.validate(); err != nil {
		return err
	}

	return nil
}

func (p PlayerConfig) validate() error {
	u, err := url.Parse(p.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid player api base url: %q (must be an absolute http(s) URL)", p.APIBaseURL)
	}
	if len(p.CredentialKeys) == 0 {
		return fmt.Errorf("invalid player credential keys: at least one key is required")
	}
	for _, key := range p.CredentialKeys {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("invalid player credential keys: empty key")
		}
	}
	validPlacements := []string{"header", "query"}
	if !contains(validPlacements, p.TokenPlacement) {
		return fmt.Errorf("invalid player token placement: %s (must be one of: %s)", p.TokenPlacement, strings.Join(validPlacements, ", "))
	}
	if p.PrecheckTimeout <= 0 {
		return fmt.Errorf("invalid player precheck timeout: %v (must be > 0)", p.PrecheckTimeout)
	}
	if strings.TrimSpace(p.EmbedHost) == "" {
		return fmt.Errorf("invalid player embed host: must not be empty")
	}
	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
