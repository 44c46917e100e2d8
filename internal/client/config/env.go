package config

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix is prepended to every variable name below.
const EnvPrefix = "ROADWATCH_"

type envConfig struct {
	ServerBaseURL       *string        `env:"SERVER_BASE_URL, noinit"`
	RequestTimeout      *time.Duration `env:"REQUEST_TIMEOUT, noinit"`
	OnlineCheckInterval *time.Duration `env:"ONLINE_CHECK_INTERVAL, noinit"`
	DatabasePath        *string        `env:"DATABASE_PATH, noinit"`
	LogLevel            *string        `env:"LOG_LEVEL, noinit"`
	LogBackend          *string        `env:"LOG_BACKEND, noinit"`
	PhoneRegion         *string        `env:"PHONE_REGION, noinit"`
}

// parseEnv overlays cfg with the ROADWATCH_* variables that are set.
func parseEnv(ctx context.Context, cfg *Config, l envconfig.Lookuper) error {
	if l == nil {
		return nil
	}

	var ec envConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &ec,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	}); err != nil {
		return err
	}

	if ec.ServerBaseURL != nil {
		cfg.ServerBaseURL = *ec.ServerBaseURL
	}
	if ec.RequestTimeout != nil {
		cfg.RequestTimeout = *ec.RequestTimeout
	}
	if ec.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = *ec.OnlineCheckInterval
	}
	if ec.DatabasePath != nil {
		cfg.DatabasePath = *ec.DatabasePath
	}
	if ec.LogLevel != nil {
		cfg.LogLevel = *ec.LogLevel
	}
	if ec.LogBackend != nil {
		cfg.LogBackend = *ec.LogBackend
	}
	if ec.PhoneRegion != nil {
		cfg.PhoneRegion = *ec.PhoneRegion
	}
	return nil
}
