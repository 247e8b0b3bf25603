// Package config handles loading of application settings from an optional
// config file, the environment (populated from .env by main) and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	SQLDriver string
	SQLDSN    string

	MongoURI      string
	MongoDatabase string

	ChunkSize int

	FetchFailOnError bool
	FetchAtomic      bool
	FetchTimeout     time.Duration

	AWSRegion string

	LogFile   string
	LogLevel  string
	LogFormat string
}

var ErrSQLNotConfigured = errors.New("sql.dsn not set (CSVBATCH_SQL_DSN or SQL_CONNECTION_STRING)")

func setDefaults(v *viper.Viper) {
	v.SetDefault("sql.driver", "sqlserver")
	v.SetDefault("mongo.database", "csvbatch")
	v.SetDefault("load.chunk_size", 10)
	v.SetDefault("fetch.fail_on_error", false)
	v.SetDefault("fetch.atomic", false)
	v.SetDefault("fetch.timeout", "60s")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig loads settings. configFile may be empty, in which case only the
// environment and defaults are used. Environment keys are the config keys
// upper-cased with a CSVBATCH_ prefix, e.g. CSVBATCH_LOAD_CHUNK_SIZE.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CSVBATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Connection strings also accept the plain names used by earlier deployments.
	if err := v.BindEnv("sql.dsn", "CSVBATCH_SQL_DSN", "SQL_CONNECTION_STRING"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("mongo.uri", "CSVBATCH_MONGO_URI", "MONGO_CONNECTION_STRING"); err != nil {
		return nil, err
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", configFile, err)
		}
	}

	cfg := &Config{
		SQLDriver:        v.GetString("sql.driver"),
		SQLDSN:           v.GetString("sql.dsn"),
		MongoURI:         v.GetString("mongo.uri"),
		MongoDatabase:    v.GetString("mongo.database"),
		ChunkSize:        v.GetInt("load.chunk_size"),
		FetchFailOnError: v.GetBool("fetch.fail_on_error"),
		FetchAtomic:      v.GetBool("fetch.atomic"),
		FetchTimeout:     v.GetDuration("fetch.timeout"),
		AWSRegion:        v.GetString("aws.region"),
		LogFile:          v.GetString("log.file"),
		LogLevel:         v.GetString("log.level"),
		LogFormat:        v.GetString("log.format"),
	}

	if cfg.ChunkSize <= 0 {
		return nil, fmt.Errorf("load.chunk_size must be positive, got %d", cfg.ChunkSize)
	}
	return cfg, nil
}

// RequireSQL reports an error when no SQL connection is configured.
func (c *Config) RequireSQL() error {
	if c.SQLDSN == "" {
		return ErrSQLNotConfigured
	}
	return nil
}
