package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Log      LogConfig
	Geocoder GeocoderConfig
	Storage  StorageConfig
	Auth     AuthConfig
	Bus      BusConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port            string `envconfig:"SERVER_PORT" default:"3000"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"`       // seconds
	BodyLimitMB     int    `envconfig:"SERVER_BODY_LIMIT_MB" default:"6"`    // multipart uploads carry a 5MB image
	CORSOrigins     string `envconfig:"SERVER_CORS_ORIGINS" default:"*"`     // comma separated
}

// DBConfig holds database-related configuration.
// WARNING: Default password is for local development only.
// In production, always set DB_PASSWORD via environment variable.
type DBConfig struct {
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	User           string `envconfig:"DB_USER" default:"postgres"`
	Password       string `envconfig:"DB_PASSWORD" default:"postgres"` // CHANGE IN PRODUCTION
	Name           string `envconfig:"DB_NAME" default:"foodlink"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns       int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns       int    `envconfig:"DB_MIN_CONNS" default:"5"`
	ConnectRetries int    `envconfig:"DB_CONNECT_RETRIES" default:"5"`
	AutoMigrate    bool   `envconfig:"DB_AUTO_MIGRATE" default:"false"`
}

// DSN returns the PostgreSQL connection string.
func (c DBConfig) DSN() string {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.sslMode())
	if c.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", c.MaxConns)
	}
	if c.MinConns > 0 {
		dsn += fmt.Sprintf("&pool_min_conns=%d", c.MinConns)
	}
	return dsn
}

func (c DBConfig) sslMode() string {
	if c.SSLMode == "" {
		return "disable"
	}
	return c.SSLMode
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Pretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// GeocoderConfig configures the Google geocoding client.
type GeocoderConfig struct {
	APIKey  string        `envconfig:"GOOGLE_GEO_LOCATION"`
	Timeout time.Duration `envconfig:"GEOCODER_TIMEOUT" default:"5s"`
	BaseURL string        `envconfig:"GEOCODER_BASE_URL"`
}

// StorageConfig configures the S3 bucket holding donation and profile images.
type StorageConfig struct {
	Bucket        string `envconfig:"STORAGE_BUCKET" default:"foodlink-uploads"`
	Region        string `envconfig:"STORAGE_REGION" default:"us-east-1"`
	PublicBaseURL string `envconfig:"STORAGE_PUBLIC_BASE_URL"`
	KeyPrefix     string `envconfig:"STORAGE_KEY_PREFIX" default:"images"`
}

// PublicURL returns the base URL objects are served from.
func (c StorageConfig) PublicURL() string {
	if c.PublicBaseURL != "" {
		return strings.TrimRight(c.PublicBaseURL, "/")
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", c.Bucket, c.Region)
}

// AuthConfig holds token and Google sign-in configuration.
type AuthConfig struct {
	JWTSecret      string        `envconfig:"JWT_SECRET" default:"dev-only-secret-change-me"` // CHANGE IN PRODUCTION
	TokenTTL       time.Duration `envconfig:"JWT_TTL" default:"24h"`
	GoogleClientID string        `envconfig:"GOOGLE_CLIENT_ID"`
}

// BusConfig selects the message bus transport.
type BusConfig struct {
	Driver        string `envconfig:"BUS_DRIVER" default:"memory"` // memory | kafka
	Brokers       string `envconfig:"BUS_KAFKA_BROKERS" default:"localhost:9092"`
	ConsumerGroup string `envconfig:"BUS_KAFKA_GROUP" default:"foodlink-api"`
}

// BrokerList splits the comma separated broker list.
func (c BusConfig) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Load parses environment variables into the Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.Bus.Driver != "memory" && cfg.Bus.Driver != "kafka" {
		return nil, fmt.Errorf("unsupported BUS_DRIVER %q", cfg.Bus.Driver)
	}
	return &cfg, nil
}
