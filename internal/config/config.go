package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string `yaml:"port" env:"SERVER_PORT"`
		Mode           string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath    string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		PublicBaseURL  string `yaml:"public_base_url" env:"SERVER_PUBLIC_BASE_URL"`
		AllowedOrigins string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Supabase struct {
		URL            string `yaml:"url" env:"SUPABASE_URL"`
		AnonKey        string `yaml:"anon_key" env:"SUPABASE_ANON_KEY"`
		ServiceRoleKey string `yaml:"service_role_key" env:"SUPABASE_SERVICE_ROLE_KEY"`
		JWTSecret      string `yaml:"jwt_secret" env:"SUPABASE_JWT_SECRET"`
		StorageBucket  string `yaml:"storage_bucket" env:"SUPABASE_STORAGE_BUCKET"`
		RequestTimeout string `yaml:"request_timeout" env:"SUPABASE_REQUEST_TIMEOUT"`
	} `yaml:"supabase"`

	Auth struct {
		VerificationTokenTTL string `yaml:"verification_token_ttl" env:"AUTH_VERIFICATION_TOKEN_TTL"`
		JWKSRefresh          string `yaml:"jwks_refresh" env:"AUTH_JWKS_REFRESH"`
	} `yaml:"auth"`

	SMTP struct {
		Host        string `yaml:"host" env:"SMTP_HOST"`
		Port        int    `yaml:"port" env:"SMTP_PORT"`
		Username    string `yaml:"username" env:"SMTP_USER"`
		Password    string `yaml:"password" env:"SMTP_PASS"`
		From        string `yaml:"from" env:"SMTP_FROM"`
		FrontendURL string `yaml:"frontend_url" env:"FRONTEND_URL"`
	} `yaml:"smtp"`

	Storage struct {
		Driver string `yaml:"driver" env:"STORAGE_DRIVER"`
	} `yaml:"storage"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// Storage drivers
const (
	StorageDriverSupabase = "supabase"
	StorageDriverLocal    = "local"
)

// LoadConfig loads configuration from a file, an optional .env file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Values already present in the process environment win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "./uploads"
	config.Server.AllowedOrigins = "http://localhost:3000"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "edvios"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.Supabase.StorageBucket = "documents"
	config.Supabase.RequestTimeout = "10s"

	config.Auth.VerificationTokenTTL = "24h"
	config.Auth.JWKSRefresh = "1h"

	config.SMTP.Port = 587
	config.SMTP.FrontendURL = "http://localhost:3000"

	config.Storage.Driver = StorageDriverLocal

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Supabase.URL == "" && config.Supabase.JWTSecret == "" {
		return fmt.Errorf("either supabase url or supabase jwt secret is required to verify tokens")
	}

	for name, value := range map[string]string{
		"database connection max lifetime": config.Database.ConnMaxLifetime,
		"supabase request timeout":         config.Supabase.RequestTimeout,
		"verification token ttl":           config.Auth.VerificationTokenTTL,
		"jwks refresh interval":            config.Auth.JWKSRefresh,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch config.Storage.Driver {
	case StorageDriverLocal:
	case StorageDriverSupabase:
		if config.Supabase.URL == "" || config.Supabase.ServiceRoleKey == "" {
			return fmt.Errorf("supabase storage requires supabase url and service role key")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", config.Storage.Driver)
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// AllowedOrigins splits the comma separated CORS origin list
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.Server.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// JWKSURL is the published key set of the identity provider
func (c *Config) JWKSURL() string {
	if c.Supabase.URL == "" {
		return ""
	}
	return strings.TrimRight(c.Supabase.URL, "/") + "/auth/v1/.well-known/jwks.json"
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
