package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/guillermoBallester/snowgate/internal/core/domain"
	"github.com/guillermoBallester/snowgate/internal/core/port"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type toolNameKey struct{}

// WithToolName returns a context carrying the MCP tool name for audit logging.
func WithToolName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, toolNameKey{}, name)
}

func toolNameFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(toolNameKey{}).(string); ok {
		return v
	}
	return ""
}

// QueryService runs statements through the admission gate and, for accepted
// ones, through the executor. Every evaluation is audited, accepted or not.
type QueryService struct {
	gate     *domain.Gate
	executor port.QueryExecutor
	auditor  port.QueryAuditor
	logger   *slog.Logger
	tracer   trace.Tracer
	inst     port.Instrumentation
}

func NewQueryService(gate *domain.Gate, executor port.QueryExecutor, auditor port.QueryAuditor, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *QueryService {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("noop")
	}
	if inst == nil {
		inst = port.NoopInstrumentation{}
	}
	return &QueryService{
		gate:     gate,
		executor: executor,
		auditor:  auditor,
		logger:   logger,
		tracer:   tracer,
		inst:     inst,
	}
}

// Execute evaluates the raw SQL against the gate and, if admitted, delegates
// the sanitized statement to the executor. Rejections never reach the
// warehouse.
func (s *QueryService) Execute(ctx context.Context, sql string) ([]map[string]any, error) {
	ctx, span := s.tracer.Start(ctx, "QueryService.Execute",
		trace.WithAttributes(
			attribute.String("db.system", "snowflake"),
			attribute.String("db.operation.name", "query"),
			attribute.String("db.statement", sql),
		),
	)
	defer span.End()

	requestID := uuid.NewString()

	decision, err := s.gate.Evaluate(sql)
	if err != nil {
		rej, _ := domain.AsRejection(err)
		reason := ""
		if rej != nil {
			reason = string(rej.Kind)
		}
		s.logger.WarnContext(ctx, "query rejected",
			slog.String("request_id", requestID),
			slog.String("db.statement", sql),
			slog.String("rejection", reason),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementQueryRejections(ctx)

		s.auditor.Record(ctx, port.AuditEntry{
			ID:       requestID,
			Tool:     toolNameFromCtx(ctx),
			SQL:      sql,
			Rejected: true,
			Reason:   reason,
			Err:      err,
		})
		return nil, fmt.Errorf("admission: %w", err)
	}

	start := time.Now()
	results, err := s.executor.Execute(ctx, decision.Statement)
	durationMS := time.Since(start).Milliseconds()

	s.inst.RecordQueryDuration(ctx, float64(durationMS))

	s.auditor.Record(ctx, port.AuditEntry{
		ID:           requestID,
		Tool:         toolNameFromCtx(ctx),
		SQL:          decision.Statement,
		RowsReturned: len(results),
		DurationMS:   durationMS,
		Err:          err,
	})

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.inst.IncrementQueryErrors(ctx)
		return results, err
	}

	s.inst.IncrementQueryCount(ctx)
	span.SetAttributes(attribute.Int("db.response.rows", len(results)))

	return results, nil
}
