package snowflake

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/guillermoBallester/snowgate/internal/core/domain"
	"github.com/guillermoBallester/snowgate/internal/core/port"
)

// Explorer enumerates warehouse objects via SHOW and DESCRIBE statements.
// Identifier arguments are interpolated, never bound, because Snowflake does
// not accept bind variables for object names. Every caller-supplied segment
// must already have passed identifier validation; the catalog service
// enforces this.
type Explorer struct {
	db *sql.DB
}

func NewExplorer(db *sql.DB) *Explorer {
	return &Explorer{db: db}
}

func (e *Explorer) ListDatabases(ctx context.Context) ([]port.DatabaseInfo, error) {
	maps, err := e.show(ctx, "SHOW DATABASES")
	if err != nil {
		return nil, fmt.Errorf("listing databases: %w", err)
	}

	var dbs []port.DatabaseInfo
	for _, m := range maps {
		dbs = append(dbs, port.DatabaseInfo{
			Name:    asString(m["name"]),
			Owner:   asString(m["owner"]),
			Comment: asString(m["comment"]),
		})
	}
	return dbs, nil
}

func (e *Explorer) ListSchemas(ctx context.Context, database string) ([]port.SchemaInfo, error) {
	stmt := "SHOW SCHEMAS"
	if database != "" {
		stmt = "SHOW SCHEMAS IN DATABASE " + database
	}

	maps, err := e.show(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("listing schemas: %w", err)
	}

	var schemas []port.SchemaInfo
	for _, m := range maps {
		schemas = append(schemas, port.SchemaInfo{
			Name:     asString(m["name"]),
			Database: asString(m["database_name"]),
			Comment:  asString(m["comment"]),
		})
	}
	return schemas, nil
}

func (e *Explorer) ListTables(ctx context.Context, database, schema string) ([]port.TableInfo, error) {
	stmt := "SHOW TABLES"
	switch {
	case database != "" && schema != "":
		stmt = "SHOW TABLES IN SCHEMA " + database + "." + schema
	case database != "":
		stmt = "SHOW TABLES IN DATABASE " + database
	case schema != "":
		stmt = "SHOW TABLES IN SCHEMA " + schema
	}

	maps, err := e.show(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	var tables []port.TableInfo
	for _, m := range maps {
		tables = append(tables, port.TableInfo{
			Name:     asString(m["name"]),
			Schema:   asString(m["schema_name"]),
			Database: asString(m["database_name"]),
			Kind:     asString(m["kind"]),
			Rows:     asInt64(m["rows"]),
			Bytes:    asInt64(m["bytes"]),
			Comment:  asString(m["comment"]),
		})
	}
	return tables, nil
}

func (e *Explorer) DescribeTable(ctx context.Context, name domain.QualifiedName) (*port.TableDetail, error) {
	maps, err := e.show(ctx, "DESCRIBE TABLE "+name.String())
	if err != nil {
		return nil, fmt.Errorf("describing table %s: %w", name, err)
	}

	detail := &port.TableDetail{
		Database: name.Database,
		Schema:   name.Schema,
		Name:     name.Table,
	}
	for _, m := range maps {
		detail.Columns = append(detail.Columns, port.ColumnInfo{
			Name:         asString(m["name"]),
			DataType:     asString(m["type"]),
			IsNullable:   asString(m["null?"]) == "Y",
			DefaultValue: asString(m["default"]),
			IsPrimaryKey: asString(m["primary key"]) == "Y",
			Comment:      asString(m["comment"]),
		})
	}
	return detail, nil
}

func (e *Explorer) show(ctx context.Context, stmt string) ([]map[string]any, error) {
	rows, err := e.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return rowsToMaps(rows)
}
