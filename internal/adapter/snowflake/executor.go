package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type Executor struct {
	db           *sql.DB
	maxRows      int
	queryTimeout time.Duration
}

func NewExecutor(db *sql.DB, maxRows int, queryTimeout time.Duration) *Executor {
	return &Executor{
		db:           db,
		maxRows:      maxRows,
		queryTimeout: queryTimeout,
	}
}

// Execute runs a gate-approved statement with the configured timeout and
// row cap. The driver cancels the warehouse query when the context expires.
func (e *Executor) Execute(ctx context.Context, sqlText string) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	rows, err := e.db.QueryContext(ctx, limitWrap(sqlText, e.maxRows))
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	defer rows.Close()

	return rowsToMaps(rows)
}

// limitWrap caps result size server-side. Only SELECT/WITH statements can
// be wrapped in a subquery; SHOW, DESCRIBE, and EXPLAIN run as-is.
func limitWrap(sqlText string, maxRows int) string {
	upper := strings.ToUpper(strings.TrimSpace(sqlText))
	if strings.HasPrefix(upper, "SELECT") || strings.HasPrefix(upper, "WITH") {
		return fmt.Sprintf("SELECT * FROM (%s) LIMIT %d", sqlText, maxRows)
	}
	return sqlText
}
