package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Storage  StorageConfig  `toml:"storage"`
	Queuing  QueuingConfig  `toml:"queuing"`
	Ordering OrderingConfig `toml:"ordering"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port int `toml:"port"`
}

// DatabaseConfig contains Postgres connection settings
type DatabaseConfig struct {
	URL string `toml:"url"`
}

// RedisConfig contains Redis connection settings shared by the cache
// and the task queue
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StorageConfig contains object store settings
type StorageConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
}

// QueuingConfig contains background worker settings
type QueuingConfig struct {
	Concurrency int `toml:"concurrency"`
}

// OrderingConfig contains order engine settings
type OrderingConfig struct {
	// Timezone is the business time zone used for order dates and the
	// daily order number prefix, e.g. "Asia/Tokyo".
	Timezone string `toml:"timezone"`
	// ConflictAuditHour is the local hour (0-23) at which the daily
	// rule conflict audit runs.
	ConflictAuditHour int `toml:"conflict_audit_hour"`
}

// Load reads configuration from the TOML file at path, if it exists,
// then applies environment variable overrides. Environment always wins
// so deployments can keep secrets out of the file.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to load config file: %w", err)
			}
		}
	}

	applyEnv(cfg)

	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("database url is required (set DATABASE_URL or database.url)")
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		Storage: StorageConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
		},
		Queuing:  QueuingConfig{Concurrency: 10},
		Ordering: OrderingConfig{Timezone: "UTC", ConflictAuditHour: 6},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("MINIO_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("MINIO_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("MINIO_USE_SSL"); v == "true" {
		cfg.Storage.UseSSL = true
	}
	if v := os.Getenv("QUEUE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Queuing.Concurrency = n
		}
	}
	if v := os.Getenv("ORDER_TIMEZONE"); v != "" {
		cfg.Ordering.Timezone = v
	}
}
