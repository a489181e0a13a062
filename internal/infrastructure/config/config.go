package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/campusdesk/portal-agent/internal/core/domain"
)

type Config struct {
	Port     string `env:"PORT,      default=8787"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	API     APIConfig
	Session SessionConfig
	Demo    DemoConfig
	Storage StorageConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

// APIConfig points at the remote school API.
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:8080"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=15s"`
}

type SessionConfig struct {
	AuthPrefix      string        `env:"AUTH_PREFIX,             default=/auth/"`
	Debounce        time.Duration `env:"UNAUTHORIZED_DEBOUNCE,   default=800ms"`
	RefreshInterval time.Duration `env:"MODULE_REFRESH_INTERVAL, default=5m"`
}

// DemoConfig enables the offline backend.
type DemoConfig struct {
	Enabled      bool          `env:"DEMO_AUTH,          default=false"`
	JWTSecret    string        `env:"DEMO_JWT_SECRET,    default=portal-demo-secret"`
	PasswordHash string        `env:"DEMO_PASSWORD_HASH"`
	TokenTTL     time.Duration `env:"DEMO_TOKEN_TTL,     default=24h"`
}

type StorageConfig struct {
	// Tier is read first at bootstrap: durable or ephemeral.
	Tier string `env:"STORAGE_TIER,      default=durable"`
	// DurableBackend is redis, mongo or memory.
	DurableBackend string `env:"DURABLE_BACKEND,   default=redis"`
	Namespace      string `env:"STORAGE_NAMESPACE, default=portal"`
}

type MongoConfig struct {
	URI        string `env:"MONGO_URI,        default=mongodb://localhost:27017"`
	Database   string `env:"MONGO_DB,         default=campus_portal"`
	Collection string `env:"MONGO_COLLECTION, default=agent_storage"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// PreferredTier parses Storage.Tier.
func (c *Config) PreferredTier() (domain.Tier, error) {
	return domain.ParseTier(c.Storage.Tier)
}

// Validate rejects combinations the agent cannot start with.
func (c *Config) Validate() error {
	if _, err := c.PreferredTier(); err != nil {
		return err
	}
	switch c.Storage.DurableBackend {
	case "redis", "mongo", "memory":
	default:
		return fmt.Errorf("unknown DURABLE_BACKEND %q (expected redis, mongo or memory)", c.Storage.DurableBackend)
	}
	if c.Demo.Enabled && c.Demo.JWTSecret == "" {
		return fmt.Errorf("DEMO_JWT_SECRET is required when DEMO_AUTH is set")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
