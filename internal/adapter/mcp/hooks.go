package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/guillermoBallester/snowgate/internal/core/port"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// toolCall tracks one in-flight tool invocation between the before hook
// and the after or error hook.
type toolCall struct {
	tool  string
	start time.Time
	span  trace.Span
}

func (c *toolCall) elapsed() time.Duration {
	if c.start.IsZero() {
		return 0
	}
	return time.Since(c.start)
}

// ToolCallHooks builds MCP server hooks that give every tool call a log
// line, a span, and a per-tool duration sample. Results carrying a gate
// refusal report outcome "rejected" rather than "error", so refused
// statements stay distinguishable from warehouse failures in logs and
// traces.
func ToolCallHooks(logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.Hooks {
	hooks := &server.Hooks{}
	var inflight sync.Map // request id -> *toolCall

	hooks.AddBeforeCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest) {
		call := &toolCall{tool: req.Params.Name, start: time.Now()}

		if tracer != nil {
			_, span := tracer.Start(ctx, "mcp.tool/"+call.tool,
				trace.WithAttributes(
					attribute.String("mcp.tool", call.tool),
				),
			)
			call.span = span
		}

		inflight.Store(id, call)
	})

	hooks.AddAfterCallTool(func(ctx context.Context, id any, req *mcp.CallToolRequest, result any) {
		call := finishCall(&inflight, id)
		outcome, detail := classifyOutcome(result)

		level := slog.LevelInfo
		switch outcome {
		case outcomeRejected:
			level = slog.LevelWarn
		case outcomeError:
			level = slog.LevelError
		}

		attrs := []slog.Attr{
			slog.String("rpc.method", "tools/call"),
			slog.String("mcp.tool", req.Params.Name),
			slog.Duration("duration", call.elapsed()),
			slog.String("outcome", outcome),
		}
		if detail != "" {
			attrs = append(attrs, slog.String("detail", detail))
		}
		logger.LogAttrs(ctx, level, "tool call", attrs...)

		if inst != nil {
			inst.RecordToolDuration(ctx, req.Params.Name, float64(call.elapsed().Milliseconds()))
		}

		if call.span != nil {
			call.span.SetAttributes(attribute.String("gate.outcome", outcome))
			// A rejection is the gate doing its job; only warehouse or
			// marshalling failures mark the span as errored.
			if outcome == outcomeError {
				call.span.SetStatus(codes.Error, detail)
				call.span.RecordError(fmt.Errorf("tool %s: %s", req.Params.Name, detail))
			}
			call.span.End()
		}
	})

	hooks.AddOnError(func(ctx context.Context, id any, method mcp.MCPMethod, message any, err error) {
		call := finishCall(&inflight, id)

		toolName := ""
		if req, ok := message.(*mcp.CallToolRequest); ok {
			toolName = req.Params.Name
		}
		if toolName != "" {
			logger.LogAttrs(ctx, slog.LevelError, "tool call",
				slog.String("rpc.method", "tools/call"),
				slog.String("mcp.tool", toolName),
				slog.Duration("duration", call.elapsed()),
				slog.String("outcome", outcomeError),
				slog.String("detail", err.Error()),
			)
		}

		if call.span != nil {
			call.span.SetAttributes(attribute.String("gate.outcome", outcomeError))
			call.span.RecordError(err)
			call.span.SetStatus(codes.Error, err.Error())
			call.span.End()
		}
	})

	return hooks
}

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

// classifyOutcome inspects a tool result. Gate refusals surface through
// the query service with an "admission:" prefix in the error text; that
// marker separates policy decisions from genuine failures.
func classifyOutcome(result any) (outcome, detail string) {
	r, ok := result.(*mcp.CallToolResult)
	if !ok || r == nil || !r.IsError {
		return outcomeOK, ""
	}
	msg := resultErrorText(r)
	if strings.Contains(msg, "admission: ") {
		return outcomeRejected, msg
	}
	return outcomeError, msg
}

func resultErrorText(r *mcp.CallToolResult) string {
	for _, content := range r.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func finishCall(inflight *sync.Map, id any) *toolCall {
	if v, ok := inflight.LoadAndDelete(id); ok {
		return v.(*toolCall)
	}
	return &toolCall{}
}
