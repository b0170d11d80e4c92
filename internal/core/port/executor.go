package port

import "context"

// QueryExecutor runs a statement that already passed the gate and returns
// rows as maps keyed by column name. Cancellation and timeouts belong to
// the executor; the gate has no long-running work.
type QueryExecutor interface {
	Execute(ctx context.Context, sql string) ([]map[string]any, error)
}
