// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers a YAML file and the environment on top.
// - Validation happens once, in Load, and reports ErrInvalidConfig.
package config

import "time"

// Supported store drivers.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":3000".
	Addr string `koanf:"addr"`

	// StoreDriver picks the document store backend: memory or mongo.
	StoreDriver string `koanf:"store_driver"`

	// MongoURI and MongoDatabase locate the MongoDB deployment when StoreDriver is mongo.
	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`

	// MongoTimeoutMS bounds connect and per-operation time against MongoDB.
	MongoTimeoutMS int `koanf:"mongo_timeout_ms"`

	// BcryptCost is the work factor used when hashing passwords at signup.
	BcryptCost int `koanf:"bcrypt_cost"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":3000",
		StoreDriver:       StoreMemory,
		MongoURI:          "mongodb://localhost:27017",
		MongoDatabase:     "pokedex",
		MongoTimeoutMS:    5000,
		BcryptCost:        14,
		ShutdownTimeoutMS: 30000,
	}
}

// MongoTimeout returns MongoTimeoutMS as a duration.
func (c *Config) MongoTimeout() time.Duration {
	return time.Duration(c.MongoTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
