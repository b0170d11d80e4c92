package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Warehouse connection. DSN wins when set; otherwise the discrete
	// SNOWFLAKE_* fields are assembled into one.
	DSN           string
	Account       string
	User          string
	Password      string
	Database      string
	Schema        string
	Warehouse     string
	Role          string
	AuthType      string // "snowflake" (password, default) or "externalbrowser"
	MaxRows       int
	QueryTimeout  time.Duration

	// Access scope. Empty lists leave that dimension unrestricted.
	AllowedDatabases     []string
	AllowedSchemas       []string
	AllowedTables        []string
	UppercaseIdentifiers bool   // fold unquoted names to uppercase before matching
	ScopeFile            string // optional path to scope YAML

	// Logging.
	LogLevel slog.Level

	// Transport.
	Transport       string // "stdio" (default) or "http"
	HTTPAddr        string // listen address for HTTP transport (default ":8080")
	HTTPBearerToken string // required when transport=http

	// Connection pool.
	MaxOpenConns    int           // default: 5
	MaxIdleConns    int           // default: 2
	ConnMaxLifetime time.Duration // default: 30m

	// Observability.
	OTelEnabled bool // enable OpenTelemetry tracing and metrics

	// CLI-only fields (not settable via env vars).
	AuditLog string // path to NDJSON audit log file
}

// Overrides holds CLI flag values that override environment variables.
// Pointer fields distinguish "not set" from zero values.
type Overrides struct {
	DSN             *string
	LogLevel        *string
	MaxRows         *int
	QueryTimeout    *time.Duration
	ScopeFile       *string
	Transport       *string
	HTTPAddr        *string
	HTTPBearerToken *string
	OTelEnabled     bool
	AuditLog        string

	// Connection pool overrides.
	MaxOpenConns    *int
	MaxIdleConns    *int
	ConnMaxLifetime *time.Duration
}

// Load builds a Config from environment variables, then applies CLI overrides,
// then validates the result.
func Load(overrides Overrides) (*Config, error) {
	cfg := defaults()

	if err := loadEnvVars(cfg); err != nil {
		return nil, err
	}
	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config populated with default values.
func defaults() *Config {
	return &Config{
		MaxRows:              100,
		QueryTimeout:         30 * time.Second,
		UppercaseIdentifiers: true,
		Transport:            "stdio",
		HTTPAddr:             ":8080",
		MaxOpenConns:         5,
		MaxIdleConns:         2,
		ConnMaxLifetime:      30 * time.Minute,
	}
}

// loadEnvVars reads all supported environment variables into cfg.
func loadEnvVars(cfg *Config) error {
	cfg.DSN = os.Getenv("SNOWFLAKE_DSN")
	cfg.Account = os.Getenv("SNOWFLAKE_ACCOUNT")
	cfg.User = os.Getenv("SNOWFLAKE_USER")
	cfg.Password = os.Getenv("SNOWFLAKE_PASSWORD")
	cfg.Database = os.Getenv("SNOWFLAKE_DATABASE")
	cfg.Schema = os.Getenv("SNOWFLAKE_SCHEMA")
	cfg.Warehouse = os.Getenv("SNOWFLAKE_WAREHOUSE")
	cfg.Role = os.Getenv("SNOWFLAKE_ROLE")
	cfg.AuthType = os.Getenv("SNOWFLAKE_AUTH_TYPE")

	if v := os.Getenv("MAX_ROWS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid MAX_ROWS value %q: must be a positive integer", v)
		}
		cfg.MaxRows = n
	}

	if v := os.Getenv("QUERY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid QUERY_TIMEOUT value %q: %w", v, err)
		}
		cfg.QueryTimeout = d
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}

	cfg.AllowedDatabases = splitList(os.Getenv("ALLOWED_DATABASES"))
	cfg.AllowedSchemas = splitList(os.Getenv("ALLOWED_SCHEMAS"))
	cfg.AllowedTables = splitList(os.Getenv("ALLOWED_TABLES"))
	cfg.ScopeFile = os.Getenv("SCOPE_FILE")

	if v := os.Getenv("UPPERCASE_IDENTIFIERS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid UPPERCASE_IDENTIFIERS value %q: %w", v, err)
		}
		cfg.UppercaseIdentifiers = b
	}

	if v := os.Getenv("TRANSPORT"); v != "" {
		cfg.Transport = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.HTTPBearerToken = os.Getenv("HTTP_BEARER_TOKEN")

	if v := os.Getenv("OTEL_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OTEL_ENABLED value %q: %w", v, err)
		}
		cfg.OTelEnabled = b
	}

	return loadPoolEnvVars(cfg)
}

// loadPoolEnvVars reads connection pool environment variables.
func loadPoolEnvVars(cfg *Config) error {
	if v := os.Getenv("MAX_OPEN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid MAX_OPEN_CONNS value %q: must be a positive integer", v)
		}
		cfg.MaxOpenConns = n
	}
	if v := os.Getenv("MAX_IDLE_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid MAX_IDLE_CONNS value %q: must be a non-negative integer", v)
		}
		cfg.MaxIdleConns = n
	}
	if v := os.Getenv("CONN_MAX_LIFETIME"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid CONN_MAX_LIFETIME value %q: %w", v, err)
		}
		cfg.ConnMaxLifetime = d
	}
	return nil
}

// applyOverrides applies CLI flag values on top of the env-loaded config.
func applyOverrides(cfg *Config, o Overrides) error {
	if o.DSN != nil {
		cfg.DSN = *o.DSN
	}
	if o.LogLevel != nil {
		level, err := parseLogLevel(*o.LogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	if o.MaxRows != nil {
		if *o.MaxRows <= 0 {
			return fmt.Errorf("invalid --max-rows value: must be a positive integer")
		}
		cfg.MaxRows = *o.MaxRows
	}
	if o.QueryTimeout != nil {
		cfg.QueryTimeout = *o.QueryTimeout
	}
	if o.ScopeFile != nil {
		cfg.ScopeFile = *o.ScopeFile
	}
	if o.Transport != nil {
		cfg.Transport = *o.Transport
	}
	if o.HTTPAddr != nil {
		cfg.HTTPAddr = *o.HTTPAddr
	}
	if o.HTTPBearerToken != nil {
		cfg.HTTPBearerToken = *o.HTTPBearerToken
	}

	if err := applyPoolOverrides(cfg, o); err != nil {
		return err
	}

	cfg.AuditLog = o.AuditLog
	cfg.OTelEnabled = cfg.OTelEnabled || o.OTelEnabled

	return nil
}

// applyPoolOverrides applies connection pool CLI flag overrides.
func applyPoolOverrides(cfg *Config, o Overrides) error {
	if o.MaxOpenConns != nil {
		if *o.MaxOpenConns <= 0 {
			return fmt.Errorf("invalid --max-open-conns value: must be a positive integer")
		}
		cfg.MaxOpenConns = *o.MaxOpenConns
	}
	if o.MaxIdleConns != nil {
		if *o.MaxIdleConns < 0 {
			return fmt.Errorf("invalid --max-idle-conns value: must be a non-negative integer")
		}
		cfg.MaxIdleConns = *o.MaxIdleConns
	}
	if o.ConnMaxLifetime != nil {
		cfg.ConnMaxLifetime = *o.ConnMaxLifetime
	}
	return nil
}

// validate checks cross-field constraints on the final config.
func validate(cfg *Config) error {
	if cfg.DSN == "" {
		if cfg.Account == "" || cfg.User == "" {
			return fmt.Errorf("connection settings are required: set SNOWFLAKE_DSN, or SNOWFLAKE_ACCOUNT and SNOWFLAKE_USER")
		}
		switch strings.ToLower(cfg.AuthType) {
		case "", "snowflake":
			if cfg.Password == "" {
				return fmt.Errorf("SNOWFLAKE_PASSWORD is required for password authentication")
			}
		case "externalbrowser":
		default:
			return fmt.Errorf("invalid SNOWFLAKE_AUTH_TYPE value %q: must be \"snowflake\" or \"externalbrowser\"", cfg.AuthType)
		}
	}

	switch cfg.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid TRANSPORT value %q: must be \"stdio\" or \"http\"", cfg.Transport)
	}

	if cfg.Transport == "http" && cfg.HTTPBearerToken == "" {
		return fmt.Errorf("HTTP_BEARER_TOKEN is required when transport is \"http\" (set via env var or --http-bearer-token flag)")
	}

	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		return fmt.Errorf("MAX_IDLE_CONNS (%d) must not exceed MAX_OPEN_CONNS (%d)", cfg.MaxIdleConns, cfg.MaxOpenConns)
	}

	return nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL value %q: must be debug, info, warn, or error", s)
	}
}
