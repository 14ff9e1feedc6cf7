// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env`
// file when present), loads them into structured Go types and
// validates them so the rest of the application can rely on a
// complete configuration.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (observability, rate limit).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every configuration variable carries.
//
// Nesting uses a double underscore, everything else is lowercased:
//
//	COURSEHUB_SERVER__PORT          -> server.port
//	COURSEHUB_DATABASE__MONGO__URI  -> database.mongo.uri
//	COURSEHUB_SERVER__READ_TIMEOUT  -> server.read_timeout
const EnvPrefix = "COURSEHUB_"

// Database drivers understood by DatabaseConfig.Driver.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// Auth providers understood by AuthConfig.Provider.
const (
	AuthProviderClerk = "clerk"
	AuthProviderJWT   = "jwt"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags tell koanf where to map values from and the
// `validate:"..."` tags are enforced by go-playground/validator.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected by LoadConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// Used to tag logs/traces and to switch behavior ("local" enables SQL logging).
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig selects the document store backend and carries the
// connection settings for each of them. Only the block matching Driver
// has to be filled in.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver" validate:"required,oneof=mongo postgres"`
	Mongo    MongoConfig    `koanf:"mongo"`
	Postgres PostgresConfig `koanf:"postgres"`
}

// MongoConfig contains the MongoDB connection string and database name.
type MongoConfig struct {
	URI  string `koanf:"uri"`
	Name string `koanf:"name"`
}

// PostgresConfig contains PostgreSQL connection parameters and pool tuning.
// Documents are stored as JSONB rows when this driver is selected.
type PostgresConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig selects how bearer credentials are verified.
//
// For the "clerk" provider SecretKey is the Clerk secret key; for the
// "jwt" provider it is the HMAC secret tokens are signed with.
type AuthConfig struct {
	Provider  string `koanf:"provider" validate:"required,oneof=clerk jwt"`
	SecretKey string `koanf:"secret_key" validate:"required"`
}

// RateLimitConfig bounds how many authenticated mutations a single user
// may perform inside Window. Counters live in Redis.
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"min=0"`
	Window   time.Duration `koanf:"window"`
}

// Validate checks the block that belongs to the selected driver.
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("database.mongo.uri is required for the %s driver", c.Driver)
		}
		if c.Mongo.Name == "" {
			return fmt.Errorf("database.mongo.name is required for the %s driver", c.Driver)
		}
	case DriverPostgres:
		if c.Postgres.Host == "" || c.Postgres.Port == 0 || c.Postgres.User == "" || c.Postgres.Name == "" {
			return fmt.Errorf("database.postgres host, port, user and name are required for the %s driver", c.Driver)
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unknown database driver: %s", c.Driver)
	}
	return nil
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it, applies defaults and returns the result.
//
// Behavior summary:
//   - Loads env vars with prefix COURSEHUB_
//   - Converts env keys into koanf keys ("__" becomes ".")
//   - Unmarshals into Config and validates struct tags
//   - Validates the selected database block
//   - Sets default rate limit and observability values when missing
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}

	// Weakly typed decoding turns "a,b" into []string{"a,b"}; splitList
	// below breaks it apart.
	err = k.Unmarshal("", mainConfig)
	if err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}
	mainConfig.Server.CORSAllowedOrigins = splitList(mainConfig.Server.CORSAllowedOrigins)

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Database.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	if mainConfig.RateLimit.Requests == 0 {
		mainConfig.RateLimit.Requests = 60
	}
	if mainConfig.RateLimit.Window <= 0 {
		mainConfig.RateLimit.Window = time.Minute
	}

	// Observability is optional; nil means "use defaults".
	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment are always derived, never configured.
	mainConfig.Observability.ServiceName = "coursehub"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// splitList flattens "a,b" style entries into separate trimmed values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
