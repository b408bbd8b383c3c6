// Package config holds the environment-driven configuration of devicegate.
//
// Each struct carries cleanenv tags so a service can load everything with
// cleanenv.ReadEnv, and a NewXxxConfigFromEnv constructor for callers that
// don't use cleanenv. Durations accept ISO-8601 ("PT2S") or Go ("2s") syntax.
//
//	var cfg struct {
//		JWT        config.JWTConfig
//		DeviceLock config.DeviceLockConfig
//	}
//	if err := cleanenv.ReadEnv(&cfg); err != nil {
//		// ...
//	}
//	if err := cfg.DeviceLock.Validate(); err != nil {
//		// err is a config.ValidationErrors
//	}
package config
