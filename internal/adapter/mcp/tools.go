package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/guillermoBallester/snowgate/internal/core/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server metadata
const serverName = "snowgate"

// Tool descriptions
const (
	descListDatabases = "List the Snowflake databases visible through the configured access scope. " +
		"Call this first to discover what data exists before listing schemas or tables."

	descListSchemas = "List schemas, optionally restricted to one database. " +
		"Use this after list_databases to narrow down where the relevant tables live."

	descListTables = "List tables with database, schema, kind, row count, size in bytes, and comment. " +
		"Optionally restrict to a database and schema. Row counts help you plan " +
		"queries with appropriate filters before running them."

	descDescribeTable = "Describe a table's columns with types, nullability, defaults, primary key " +
		"flags, and comments. Accepts a plain table name or a qualified " +
		"database.schema.table name. Use this to understand a table before writing queries."

	descDescribeTableParam = "Table to describe, optionally qualified as database.schema.table"

	descQuery = "Execute a read-only SQL query against Snowflake and return results as a JSON " +
		"array of objects. Statements are validated before execution: only single " +
		"read-only statements touching tables inside the access scope are admitted, " +
		"and a server-side row limit and query timeout are enforced. " +
		"Always use specific column names instead of SELECT *."

	descQueryParam = "SQL query to execute (SELECT statements only)"

	descExplainQuery = "Show the Snowflake execution plan for a SQL query. " +
		"Returns the planner's strategy including operations, partition pruning, and join order. " +
		"The query itself is not executed. The statement is validated the same way as query."

	descExplainQuerySQL = "The SELECT query to explain (without the EXPLAIN keyword)"
)

func RegisterTools(s *server.MCPServer, catalog *service.CatalogService, query *service.QueryService) {
	s.AddTool(
		mcp.NewTool("list_databases",
			mcp.WithDescription(descListDatabases),
		),
		listDatabasesHandler(catalog),
	)

	s.AddTool(
		mcp.NewTool("list_schemas",
			mcp.WithDescription(descListSchemas),
			mcp.WithString("database",
				mcp.Description("Database to list schemas from (optional, lists all visible schemas if omitted)"),
			),
		),
		listSchemasHandler(catalog),
	)

	s.AddTool(
		mcp.NewTool("list_tables",
			mcp.WithDescription(descListTables),
			mcp.WithString("database",
				mcp.Description("Database to list tables from (optional)"),
			),
			mcp.WithString("schema",
				mcp.Description("Schema to list tables from (optional)"),
			),
		),
		listTablesHandler(catalog),
	)

	s.AddTool(
		mcp.NewTool("describe_table",
			mcp.WithDescription(descDescribeTable),
			mcp.WithString("table_name",
				mcp.Required(),
				mcp.Description(descDescribeTableParam),
			),
		),
		describeTableHandler(catalog),
	)

	s.AddTool(
		mcp.NewTool("query",
			mcp.WithDescription(descQuery),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descQueryParam),
			),
		),
		queryHandler(query),
	)

	s.AddTool(
		mcp.NewTool("explain_query",
			mcp.WithDescription(descExplainQuery),
			mcp.WithString("sql",
				mcp.Required(),
				mcp.Description(descExplainQuerySQL),
			),
		),
		explainQueryHandler(query),
	)
}

func listDatabasesHandler(catalog *service.CatalogService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		dbs, err := catalog.ListDatabases(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list databases: %v", err)), nil
		}

		data, err := json.Marshal(dbs)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func listSchemasHandler(catalog *service.CatalogService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		database, _ := request.GetArguments()["database"].(string)

		schemas, err := catalog.ListSchemas(ctx, database)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list schemas: %v", err)), nil
		}

		data, err := json.Marshal(schemas)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func listTablesHandler(catalog *service.CatalogService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		database, _ := request.GetArguments()["database"].(string)
		schema, _ := request.GetArguments()["schema"].(string)

		tables, err := catalog.ListTables(ctx, database, schema)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list tables: %v", err)), nil
		}

		data, err := json.Marshal(tables)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func describeTableHandler(catalog *service.CatalogService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		tableName, ok := request.GetArguments()["table_name"].(string)
		if !ok || tableName == "" {
			return mcp.NewToolResultError("table_name is required"), nil
		}

		detail, err := catalog.DescribeTable(ctx, tableName)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to describe table: %v", err)), nil
		}

		data, err := json.Marshal(detail)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func queryHandler(query *service.QueryService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok || sql == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}

		ctx = service.WithToolName(ctx, "query")
		results, err := query.Execute(ctx, sql)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
		}

		data, err := json.Marshal(results)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}

func explainQueryHandler(query *service.QueryService) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sql, ok := request.GetArguments()["sql"].(string)
		if !ok || sql == "" {
			return mcp.NewToolResultError("sql is required"), nil
		}

		ctx = service.WithToolName(ctx, "explain_query")
		results, err := query.Execute(ctx, "EXPLAIN "+sql)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("explain failed: %v", err)), nil
		}

		data, err := json.Marshal(results)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}

		return mcp.NewToolResultText(string(data)), nil
	}
}
