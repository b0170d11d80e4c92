package port

import (
	"context"

	"github.com/guillermoBallester/snowgate/internal/core/domain"
)

type DatabaseInfo struct {
	Name    string `json:"name"`
	Owner   string `json:"owner,omitempty"`
	Comment string `json:"comment,omitempty"`
}

type SchemaInfo struct {
	Name     string `json:"name"`
	Database string `json:"database"`
	Comment  string `json:"comment,omitempty"`
}

type TableInfo struct {
	Name     string `json:"name"`
	Schema   string `json:"schema"`
	Database string `json:"database"`
	Kind     string `json:"kind"`
	Rows     int64  `json:"rows"`
	Bytes    int64  `json:"bytes,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

type ColumnInfo struct {
	Name         string `json:"name"`
	DataType     string `json:"data_type"`
	IsNullable   bool   `json:"is_nullable"`
	DefaultValue string `json:"default_value,omitempty"`
	IsPrimaryKey bool   `json:"is_primary_key"`
	Comment      string `json:"comment,omitempty"`
}

type TableDetail struct {
	Database string       `json:"database,omitempty"`
	Schema   string       `json:"schema,omitempty"`
	Name     string       `json:"name"`
	Columns  []ColumnInfo `json:"columns"`
}

// CatalogExplorer enumerates warehouse objects. Results are unfiltered; the
// catalog service applies the access scope before anything is surfaced.
type CatalogExplorer interface {
	ListDatabases(ctx context.Context) ([]DatabaseInfo, error)
	ListSchemas(ctx context.Context, database string) ([]SchemaInfo, error)
	ListTables(ctx context.Context, database, schema string) ([]TableInfo, error)
	DescribeTable(ctx context.Context, name domain.QualifiedName) (*TableDetail, error)
}
