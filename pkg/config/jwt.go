package config

import (
	"time"
)

// JWTConfig holds session token verification configuration
type JWTConfig struct {
	Secret   string `env:"JWT_SECRET" env-required:"true"`
	Issuer   string `env:"JWT_ISSUER" env-default:""`
	Audience string `env:"JWT_AUDIENCE" env-default:""`
	Leeway   string `env:"JWT_LEEWAY" env-default:"0s"`
}

// ParseLeeway parses the allowed clock skew
func (j JWTConfig) ParseLeeway() (time.Duration, error) {
	return parseDurationISO8601(j.Leeway)
}

// Validate checks the verification key is present and the leeway parses
func (j JWTConfig) Validate() error {
	_, leewayErr := durationCheck("JWT_LEEWAY", j.Leeway)
	return CollectErrors(
		RequireNonEmpty("JWT_SECRET", j.Secret),
		leewayErr,
	).asError()
}

// NewJWTConfigFromEnv creates a JWTConfig from environment variables
func NewJWTConfigFromEnv() JWTConfig {
	return JWTConfig{
		Secret:   GetEnvOrDefault("JWT_SECRET", ""),
		Issuer:   GetEnvOrDefault("JWT_ISSUER", ""),
		Audience: GetEnvOrDefault("JWT_AUDIENCE", ""),
		Leeway:   GetEnvOrDefault("JWT_LEEWAY", "0s"),
	}
}
