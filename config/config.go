package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Events     EventsConfig
	Cloudinary CloudinaryConfig
	Jobs       JobsConfig
}

type ServerConfig struct {
	Port           string `envconfig:"PORT" default:"8080"`
	GinMode        string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	SeedDemo       bool   `envconfig:"SEED_DEMO" default:"false"`
}

type DatabaseConfig struct {
	URL string `envconfig:"DB_URL"`
}

// DefaultJWTSecret is only fit for local development.
const DefaultJWTSecret = "change-me-in-production"

type JWTConfig struct {
	Secret      string `envconfig:"JWT_SECRET" default:"change-me-in-production"`
	ExpiryHours int    `envconfig:"JWT_EXPIRY_HOURS" default:"24"`
}

// RedisConfig backs the payment summary cache. An empty Addr disables it.
type RedisConfig struct {
	Addr       string        `envconfig:"REDIS_ADDR"`
	Password   string        `envconfig:"REDIS_PASSWORD"`
	DB         int           `envconfig:"REDIS_DB" default:"0"`
	SummaryTTL time.Duration `envconfig:"SUMMARY_CACHE_TTL" default:"30s"`
}

// EventsConfig backs the schedule/payment event publisher. An empty URL disables it.
type EventsConfig struct {
	AMQPURL  string `envconfig:"AMQP_URL"`
	Exchange string `envconfig:"AMQP_EXCHANGE" default:"daycare.events"`
}

type CloudinaryConfig struct {
	URL string `envconfig:"CLOUDINARY_URL"`
}

type JobsConfig struct {
	AutoCompleteInterval time.Duration `envconfig:"AUTOCOMPLETE_INTERVAL" default:"0"`
	TokenCleanupInterval time.Duration `envconfig:"TOKEN_CLEANUP_INTERVAL" default:"24h"`
}

// UsingDefaultSecret reports whether JWT_SECRET was left unset.
func (j JWTConfig) UsingDefaultSecret() bool {
	return j.Secret == DefaultJWTSecret
}

var AppConfig *Config

// Load reads the process environment into AppConfig.
func Load() error {
	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return err
	}
	AppConfig = cfg
	return nil
}

// Origins returns the configured CORS origins as a slice.
func (s ServerConfig) Origins() []string {
	var origins []string
	for _, o := range strings.Split(s.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
