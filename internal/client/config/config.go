package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime settings for the RoadWatch terminal client.
//
// Fields:
//   - ServerBaseURL: root of the REST backend, e.g. http://127.0.0.1:8080/api.
//   - RequestTimeout: upper bound for a single backend call.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - DatabasePath: SQLite file holding the token store.
//   - LogLevel, LogBackend: see logging.Options.
//   - PhoneRegion: region for phone numbers entered without a country code.
type Config struct {
	ServerBaseURL       string
	RequestTimeout      time.Duration
	OnlineCheckInterval time.Duration
	DatabasePath        string
	LogLevel            string
	LogBackend          string
	PhoneRegion         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080/api"
	c.RequestTimeout = 15 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.DatabasePath = "roadwatch.db"
	c.LogLevel = "info"
	c.LogBackend = "slog"
	c.PhoneRegion = "US"
}

// LoadConfig builds a Config from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(context.Background(), os.Args[1:], envconfig.OsLookuper())
}

// Load applies defaults, then the JSON file named by -c/-config, then
// ROADWATCH_* variables from env, then flags. Later sources take precedence.
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
