package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eleven-am/eventhub/internal/domain"
)

// EnvConfigPath names the variable that points at the config file
const EnvConfigPath = "EVENTHUB_CONFIG"

var configLocations = []string{"eventhub.yaml", "eventhub.yml", ".eventhub.yaml", ".eventhub.yml"}

// Config represents the eventhub.yaml configuration structure
type Config struct {
	Database struct {
		URL             string        `yaml:"url"`
		MaxOpenConns    int           `yaml:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	} `yaml:"database"`

	HTTP struct {
		Addr            string        `yaml:"addr"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		IdleTimeout     time.Duration `yaml:"idle_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		RateLimit       struct {
			Enabled  bool          `yaml:"enabled"`
			Requests int           `yaml:"requests"`
			Window   time.Duration `yaml:"window"`
		} `yaml:"rate_limit"`
	} `yaml:"http"`

	Auth struct {
		JWTSecret      string        `yaml:"jwt_secret"`
		JWTIssuer      string        `yaml:"jwt_issuer"`
		TokenTTL       time.Duration `yaml:"token_ttl"`
		GoogleClientID string        `yaml:"google_client_id"`
		BcryptCost     int           `yaml:"bcrypt_cost"`
	} `yaml:"auth"`

	Query struct {
		DefaultPageSize int    `yaml:"default_page_size"`
		MaxPageSize     int    `yaml:"max_page_size"`
		DefaultOrdering string `yaml:"default_ordering"`
	} `yaml:"query"`

	Categories struct {
		MissingPolicy domain.MissingCategoryPolicy `yaml:"missing_policy"`
	} `yaml:"categories"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads .env, the config file at path (or the first default location
// found), applies environment overrides and fills defaults.
// A missing file is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config

	if path == "" {
		path = Path()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Path returns the config file named by EVENTHUB_CONFIG or the first default location that exists
func Path() string {
	if path := strings.TrimSpace(os.Getenv(EnvConfigPath)); path != "" {
		return path
	}

	for _, loc := range configLocations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

func (c *Config) applyEnv() error {
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.HTTP.Addr, "HTTP_ADDR")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.JWTIssuer, "JWT_ISSUER")
	setString(&c.Auth.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")

	if v := getEnv("CATEGORY_MISSING_POLICY"); v != "" {
		c.Categories.MissingPolicy = domain.MissingCategoryPolicy(v)
	}
	if v := getEnv("TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		c.Auth.TokenTTL = d
	}
	if v := getEnv("DB_MAX_OPEN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
		}
		c.Database.MaxOpenConns = n
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 10 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 20 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = 15 * time.Second
	}
	if c.HTTP.RateLimit.Requests == 0 {
		c.HTTP.RateLimit.Requests = 100
	}
	if c.HTTP.RateLimit.Window == 0 {
		c.HTTP.RateLimit.Window = time.Minute
	}

	if c.Auth.JWTIssuer == "" {
		c.Auth.JWTIssuer = "eventhub"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}

	if c.Query.DefaultPageSize == 0 {
		c.Query.DefaultPageSize = 20
	}
	if c.Query.MaxPageSize == 0 {
		c.Query.MaxPageSize = 100
	}

	if c.Categories.MissingPolicy == "" {
		c.Categories.MissingPolicy = domain.MissingIgnore
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks the settings the server cannot start without
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" {
		errs = append(errs, errors.New("missing database url (DATABASE_URL)"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("missing jwt secret (JWT_SECRET)"))
	}
	if !c.Categories.MissingPolicy.Valid() {
		errs = append(errs, fmt.Errorf("unknown categories.missing_policy %q", c.Categories.MissingPolicy))
	}
	if c.Query.DefaultPageSize > c.Query.MaxPageSize {
		errs = append(errs, fmt.Errorf("query.default_page_size %d exceeds query.max_page_size %d", c.Query.DefaultPageSize, c.Query.MaxPageSize))
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
