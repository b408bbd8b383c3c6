package config

import (
	"fmt"
	"net/url"

	dbutils "github.com/tendant/db-utils/db"
)

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string `env:"IDM_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"IDM_PG_PORT" env-default:"5432"`
	Database string `env:"IDM_PG_DATABASE" env-default:"devicegate_db"`
	User     string `env:"IDM_PG_USER" env-default:"devicegate"`
	Password string `env:"IDM_PG_PASSWORD" env-default:"pwd"`
}

// ToDatabaseURL builds a postgres:// connection string
func (d DatabaseConfig) ToDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Database)
}

// ToDbConfig converts the config to a db-utils DbConfig
func (d DatabaseConfig) ToDbConfig() dbutils.DbConfig {
	return dbutils.DbConfig{
		Host:     d.Host,
		Port:     d.Port,
		Database: d.Database,
		User:     d.User,
		Password: d.Password,
	}
}

// Validate checks the connection settings
func (d DatabaseConfig) Validate() error {
	return CollectErrors(
		RequireNonEmpty("IDM_PG_HOST", d.Host),
		RequireValidPort("IDM_PG_PORT", d.Port),
		RequireNonEmpty("IDM_PG_DATABASE", d.Database),
		RequireNonEmpty("IDM_PG_USER", d.User),
	).asError()
}

// NewDatabaseConfigFromEnv creates a DatabaseConfig from environment variables
func NewDatabaseConfigFromEnv() DatabaseConfig {
	return DatabaseConfig{
		Host:     GetEnvOrDefault("IDM_PG_HOST", "localhost"),
		Port:     GetEnvUint16("IDM_PG_PORT", 5432),
		Database: GetEnvOrDefault("IDM_PG_DATABASE", "devicegate_db"),
		User:     GetEnvOrDefault("IDM_PG_USER", "devicegate"),
		Password: GetEnvOrDefault("IDM_PG_PASSWORD", "pwd"),
	}
}
