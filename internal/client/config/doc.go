// Package config loads runtime configuration for the RoadWatch client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. ROADWATCH_* environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST backend
//	-i int      online status check interval (seconds)
//	-t int      request timeout (seconds)
//	-d string   path of the local SQLite database
//	-l string   log level
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be either strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_base_url": "http://127.0.0.1:8080/api",
//	  "request_timeout": "15s",
//	  "online_check_interval": "3s",
//	  "database_path": "roadwatch.db",
//	  "log_level": "info",
//	  "log_backend": "zerolog",
//	  "phone_region": "US"
//	}
//
// # Environment
//
//	ROADWATCH_SERVER_BASE_URL, ROADWATCH_REQUEST_TIMEOUT,
//	ROADWATCH_ONLINE_CHECK_INTERVAL, ROADWATCH_DATABASE_PATH,
//	ROADWATCH_LOG_LEVEL, ROADWATCH_LOG_BACKEND, ROADWATCH_PHONE_REGION
//
// Durations in the environment use time.ParseDuration syntax.
package config
