package config

import (
	"time"
)

// Persistence types supported for device bindings
var persistenceTypes = []string{"postgres", "postgresql", "file", "sqlite", "inmem", "memory"}

// DeviceLockConfig controls single-device enforcement
type DeviceLockConfig struct {
	EnforceDeviceLock bool   `env:"ENFORCE_DEVICE_LOCK" env-default:"false"`
	StoreTimeout      string `env:"DEVICE_LOCK_STORE_TIMEOUT" env-default:"2s"`
	Persistence       string `env:"DEVICE_LOCK_PERSISTENCE" env-default:"postgres"`
	DataDir           string `env:"DEVICE_LOCK_DATA_DIR" env-default:"./data"`
}

// ParseStoreTimeout parses the per-call store deadline
func (d DeviceLockConfig) ParseStoreTimeout() (time.Duration, error) {
	return parseDurationISO8601(d.StoreTimeout)
}

// Validate checks the store timeout is a positive duration and the
// persistence type is known
func (d DeviceLockConfig) Validate() error {
	timeout, timeoutErr := durationCheck("DEVICE_LOCK_STORE_TIMEOUT", d.StoreTimeout)
	if timeoutErr == nil {
		timeoutErr = RequirePositiveDuration("DEVICE_LOCK_STORE_TIMEOUT", timeout)
	}

	var dataDirErr *ValidationError
	if d.Persistence == "file" || d.Persistence == "sqlite" {
		dataDirErr = RequireNonEmpty("DEVICE_LOCK_DATA_DIR", d.DataDir)
	}

	return CollectErrors(
		timeoutErr,
		RequireOneOf("DEVICE_LOCK_PERSISTENCE", d.Persistence, persistenceTypes),
		dataDirErr,
	).asError()
}

// NewDeviceLockConfigFromEnv creates a DeviceLockConfig from environment variables
func NewDeviceLockConfigFromEnv() DeviceLockConfig {
	return DeviceLockConfig{
		EnforceDeviceLock: GetEnvBool("ENFORCE_DEVICE_LOCK", false),
		StoreTimeout:      GetEnvOrDefault("DEVICE_LOCK_STORE_TIMEOUT", "2s"),
		Persistence:       GetEnvOrDefault("DEVICE_LOCK_PERSISTENCE", "postgres"),
		DataDir:           GetEnvOrDefault("DEVICE_LOCK_DATA_DIR", "./data"),
	}
}
