package devserver

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/roadwatch/internal/flagx"
	"github.com/dmitrijs2005/roadwatch/internal/timex"
	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix is prepended to every environment variable the backend reads.
const EnvPrefix = "ROADWATCH_DEV_"

// Config holds the development backend settings.
type Config struct {
	ListenAddr                  string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	AdminUsername               string
	AdminPassword               string
	AdminEmail                  string
	LogLevel                    string
	LogBackend                  string
}

func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 60 * time.Minute
	c.AdminUsername = "admin"
	c.AdminPassword = "admin123"
	c.AdminEmail = "admin@roadwatch.local"
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

// LoadConfig builds a Config from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(context.Background(), os.Args[1:], envconfig.OsLookuper())
}

// Load applies defaults, the JSON file given by -c/-config, ROADWATCH_DEV_*
// variables and finally flags.
func Load(ctx context.Context, args []string, env envconfig.Lookuper) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := parseEnv(ctx, cfg, env); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	return cfg, nil
}

type jsonConfig struct {
	ListenAddr                  string         `json:"listen_addr"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	AdminUsername               string         `json:"admin_username"`
	AdminPassword               string         `json:"admin_password"`
	AdminEmail                  string         `json:"admin_email"`
	LogLevel                    string         `json:"log_level"`
	LogBackend                  string         `json:"log_backend"`
}

func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	for dst, v := range map[*string]string{
		&cfg.ListenAddr:    jc.ListenAddr,
		&cfg.SecretKey:     jc.SecretKey,
		&cfg.AdminUsername: jc.AdminUsername,
		&cfg.AdminPassword: jc.AdminPassword,
		&cfg.AdminEmail:    jc.AdminEmail,
		&cfg.LogLevel:      jc.LogLevel,
		&cfg.LogBackend:    jc.LogBackend,
	} {
		if v != "" {
			*dst = v
		}
	}
	if jc.AccessTokenValidityDuration.Duration > 0 {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	return nil
}

type envConfig struct {
	ListenAddr                  *string        `env:"LISTEN_ADDR, noinit"`
	SecretKey                   *string        `env:"SECRET_KEY, noinit"`
	AccessTokenValidityDuration *time.Duration `env:"TOKEN_TTL, noinit"`
	AdminUsername               *string        `env:"ADMIN_USERNAME, noinit"`
	AdminPassword               *string        `env:"ADMIN_PASSWORD, noinit"`
	LogLevel                    *string        `env:"LOG_LEVEL, noinit"`
	LogBackend                  *string        `env:"LOG_BACKEND, noinit"`
}

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

	if ec.ListenAddr != nil {
		cfg.ListenAddr = *ec.ListenAddr
	}
	if ec.SecretKey != nil {
		cfg.SecretKey = *ec.SecretKey
	}
	if ec.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = *ec.AccessTokenValidityDuration
	}
	if ec.AdminUsername != nil {
		cfg.AdminUsername = *ec.AdminUsername
	}
	if ec.AdminPassword != nil {
		cfg.AdminPassword = *ec.AdminPassword
	}
	if ec.LogLevel != nil {
		cfg.LogLevel = *ec.LogLevel
	}
	if ec.LogBackend != nil {
		cfg.LogBackend = *ec.LogBackend
	}
	return nil
}

// parseFlags reads -a (listen address), -s (secret key), -t (token
// validity in minutes) and -l (log level).
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("devserver", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ListenAddr, "a", cfg.ListenAddr, "listen address")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "token signing key")
	ttl := fs.Int("t", int(cfg.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.AccessTokenValidityDuration = time.Duration(*ttl) * time.Minute
		}
	})
	return nil
}
