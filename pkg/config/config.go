package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// DevJWTSecret signs tokens outside production when JWT_SECRET is unset.
	DevJWTSecret = "dev-only-secret-change-me"
)

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")
	ErrIncompleteTLS    = errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
)

type DBConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
	// SecretDefaulted reports that DevJWTSecret is in use.
	SecretDefaulted bool
}

type HTTPConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
	AllowedOrigin   string
	TLSCertFile     string
	TLSKeyFile      string
}

// TLSEnabled reports whether both a certificate and a key are configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

type LogConfig struct {
	Dir   string
	Level string
}

type Config struct {
	Env            string
	HTTP           HTTPConfig
	DB             DBConfig
	Auth           AuthConfig
	Log            LogConfig
	ReportTimezone string
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads config.env when present and then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	port, err := intOrDefault("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	maxOpen, err := intOrDefault("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxIdle, err := intOrDefault("DB_MAX_IDLE_CONNS", 5)
	if err != nil {
		return nil, err
	}
	tokenTTL, err := durationOrDefault("TOKEN_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	shutdown, err := durationOrDefault("HTTP_SHUTDOWN_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env: valueOrDefault("APP_ENV", EnvDevelopment),
		HTTP: HTTPConfig{
			Addr:            valueOrDefault("HTTP_ADDR", ":8080"),
			ShutdownTimeout: shutdown,
			AllowedOrigin:   valueOrDefault("CORS_ALLOWED_ORIGIN", "*"),
			TLSCertFile:     os.Getenv("TLS_CERT_FILE"),
			TLSKeyFile:      os.Getenv("TLS_KEY_FILE"),
		},
		DB: DBConfig{
			Host:         valueOrDefault("DB_HOST", "localhost"),
			Port:         port,
			User:         os.Getenv("DB_USER"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         os.Getenv("DB_NAME"),
			SSLMode:      valueOrDefault("DB_SSLMODE", "disable"),
			MaxOpenConns: maxOpen,
			MaxIdleConns: maxIdle,
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenTTL:      tokenTTL,
			AdminUsername: os.Getenv("ADMIN_USERNAME"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Log: LogConfig{
			Dir:   os.Getenv("LOG_DIR"),
			Level: valueOrDefault("LOG_LEVEL", "info"),
		},
		ReportTimezone: valueOrDefault("REPORT_TIMEZONE", "America/Bogota"),
	}

	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		return nil, ErrIncompleteTLS
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingJWTSecret
		}
		cfg.Auth.JWTSecret = DevJWTSecret
		cfg.Auth.SecretDefaulted = true
	}

	return cfg, nil
}

func valueOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intOrDefault(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func durationOrDefault(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
