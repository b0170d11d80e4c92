package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/guillermoBallester/snowgate/internal/adapter/mcp"
	"github.com/guillermoBallester/snowgate/internal/adapter/policy"
	"github.com/guillermoBallester/snowgate/internal/adapter/snowflake"
	"github.com/guillermoBallester/snowgate/internal/audit"
	"github.com/guillermoBallester/snowgate/internal/config"
	"github.com/guillermoBallester/snowgate/internal/core/domain"
	"github.com/guillermoBallester/snowgate/internal/core/port"
	"github.com/guillermoBallester/snowgate/internal/core/service"
	"github.com/guillermoBallester/snowgate/internal/telemetry"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"
)

var version = "dev"

func main() {
	overrides, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	if err := run(overrides); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses CLI arguments into config overrides. Pointer fields stay
// nil for flags the caller did not pass, so env values survive.
func parseFlags(args []string) (config.Overrides, error) {
	fs := flag.NewFlagSet("snowgate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	dsn := fs.String("dsn", "", "Snowflake DSN (overrides SNOWFLAKE_DSN)")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	maxRows := fs.Int("max-rows", 0, "maximum rows returned per query")
	queryTimeout := fs.Duration("query-timeout", 0, "per-query timeout")
	scopeFile := fs.String("scope-file", "", "path to scope YAML file")
	transport := fs.String("transport", "", "transport: stdio or http")
	httpAddr := fs.String("http-addr", "", "HTTP listen address")
	httpBearerToken := fs.String("http-bearer-token", "", "bearer token for HTTP transport")
	otelEnabled := fs.Bool("otel", false, "enable OpenTelemetry tracing and metrics")
	auditLog := fs.String("audit-log", "", "path to NDJSON audit log file")
	maxOpenConns := fs.Int("max-open-conns", 0, "maximum open warehouse connections")
	maxIdleConns := fs.Int("max-idle-conns", -1, "maximum idle warehouse connections")
	connMaxLifetime := fs.Duration("conn-max-lifetime", 0, "maximum connection lifetime")

	if err := fs.Parse(args); err != nil {
		return config.Overrides{}, err
	}

	o := config.Overrides{
		OTelEnabled: *otelEnabled,
		AuditLog:    *auditLog,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dsn":
			o.DSN = dsn
		case "log-level":
			o.LogLevel = logLevel
		case "max-rows":
			o.MaxRows = maxRows
		case "query-timeout":
			o.QueryTimeout = queryTimeout
		case "scope-file":
			o.ScopeFile = scopeFile
		case "transport":
			o.Transport = transport
		case "http-addr":
			o.HTTPAddr = httpAddr
		case "http-bearer-token":
			o.HTTPBearerToken = httpBearerToken
		case "max-open-conns":
			o.MaxOpenConns = maxOpenConns
		case "max-idle-conns":
			o.MaxIdleConns = maxIdleConns
		case "conn-max-lifetime":
			o.ConnMaxLifetime = connMaxLifetime
		}
	})

	return o, nil
}

func run(overrides config.Overrides) error {
	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr: stdout is reserved for the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Telemetry (optional).
	tracer := telemetry.NoopTracer()
	var inst port.Instrumentation = telemetry.NoopInstruments()
	if cfg.OTelEnabled {
		provider, err := telemetry.Init(ctx, "snowgate", version)
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown", slog.String("error", err.Error()))
			}
		}()
		tracer = otel.Tracer("github.com/guillermoBallester/snowgate")
		inst = telemetry.NewInstruments()
	}

	dsn := cfg.DSN
	if dsn == "" {
		dsn, err = snowflake.BuildDSN(snowflake.ConnParams{
			Account:       cfg.Account,
			User:          cfg.User,
			Password:      cfg.Password,
			Database:      cfg.Database,
			Schema:        cfg.Schema,
			Warehouse:     cfg.Warehouse,
			Role:          cfg.Role,
			Authenticator: cfg.AuthType,
		})
		if err != nil {
			return err
		}
	}

	logger.Info("starting snowgate",
		slog.String("version", version),
		slog.String("log_level", cfg.LogLevel.String()),
		slog.String("dsn", redactDSN(dsn)),
		slog.Int("max_rows", cfg.MaxRows),
		slog.String("query_timeout", cfg.QueryTimeout.String()),
	)

	db, err := snowflake.Open(ctx, dsn, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		return fmt.Errorf("connecting to warehouse: %w", err)
	}
	defer func() { _ = db.Close() }()

	logger.Info("warehouse connected", slog.String("db.system", "snowflake"))

	// Access scope from env lists, optionally unioned with the scope file.
	databases, schemas, tables := cfg.AllowedDatabases, cfg.AllowedSchemas, cfg.AllowedTables
	if cfg.ScopeFile != "" {
		sf, err := policy.LoadFromFile(cfg.ScopeFile)
		if err != nil {
			return fmt.Errorf("loading scope: %w", err)
		}
		databases, schemas, tables = policy.Merge(sf, databases, schemas, tables)
		logger.Info("scope file loaded", slog.String("file", cfg.ScopeFile))
	}
	scope := domain.NewAccessScope(databases, schemas, tables, cfg.UppercaseIdentifiers)

	// Audit sink (optional).
	var auditor port.QueryAuditor = port.NoopAuditor{}
	if cfg.AuditLog != "" {
		fa, err := audit.NewFileAuditor(cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		auditor = fa
		logger.Info("audit log enabled", slog.String("file", cfg.AuditLog))
	}
	defer func() { _ = auditor.Close() }()

	// Adapters
	executor := snowflake.NewExecutor(db, cfg.MaxRows, cfg.QueryTimeout)
	explorer := snowflake.NewExplorer(db)

	// Domain
	gate := domain.NewGate(scope, logger)

	// Services
	catalogSvc := service.NewCatalogService(explorer, scope)
	querySvc := service.NewQueryService(gate, executor, auditor, logger, tracer, inst)

	// MCP server with tool handlers.
	mcpServer := mcp.NewServer(version, catalogSvc, querySvc, logger, tracer, inst)

	if cfg.Transport == "http" {
		return serveHTTP(ctx, mcpServer, cfg, logger)
	}
	return serveStdio(ctx, mcpServer, logger)
}

func serveStdio(ctx context.Context, mcpServer *mcpserver.MCPServer, logger *slog.Logger) error {
	stdioServer := mcpserver.NewStdioServer(mcpServer)

	logger.Info("serving MCP over stdio")
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func serveHTTP(ctx context.Context, mcpServer *mcpserver.MCPServer, cfg *config.Config, logger *slog.Logger) error {
	streamable := mcpserver.NewStreamableHTTPServer(mcpServer)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/mcp", bearerAuthMiddleware(streamable, cfg.HTTPBearerToken))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           recoveryMiddleware(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving MCP over HTTP", slog.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// redactDSN masks the password in a Snowflake DSN for logging. The DSN has
// no scheme, so one is prepended for parsing and stripped afterward.
func redactDSN(dsn string) string {
	u, err := url.Parse("snowflake://" + dsn)
	if err != nil {
		return "***"
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "***")
	}
	return strings.TrimPrefix(u.String(), "snowflake://")
}
