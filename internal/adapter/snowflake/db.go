package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sf "github.com/snowflakedb/gosnowflake"
)

// ConnParams holds discrete connection settings used when no full DSN is
// configured. Mirrors the SNOWFLAKE_* environment variables.
type ConnParams struct {
	Account       string
	User          string
	Password      string
	Database      string
	Schema        string
	Warehouse     string
	Role          string
	Authenticator string // "snowflake" (password, default) or "externalbrowser"
}

// BuildDSN assembles a driver DSN from discrete connection settings.
func BuildDSN(p ConnParams) (string, error) {
	cfg := &sf.Config{
		Account:   p.Account,
		User:      p.User,
		Password:  p.Password,
		Database:  p.Database,
		Schema:    p.Schema,
		Warehouse: p.Warehouse,
		Role:      p.Role,
	}

	switch strings.ToLower(p.Authenticator) {
	case "", "snowflake":
		// Password authentication; the driver default.
	case "externalbrowser":
		cfg.Authenticator = sf.AuthTypeExternalBrowser
	default:
		return "", fmt.Errorf("unsupported SNOWFLAKE_AUTH_TYPE %q (use snowflake or externalbrowser)", p.Authenticator)
	}

	dsn, err := sf.DSN(cfg)
	if err != nil {
		return "", fmt.Errorf("building snowflake DSN: %w", err)
	}
	return dsn, nil
}

// Open connects to the warehouse and verifies the connection with a ping.
func Open(ctx context.Context, dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening snowflake connection: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging snowflake (10s timeout): %w", err)
	}
	return db, nil
}
