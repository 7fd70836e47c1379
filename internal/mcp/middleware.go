package mcp

import (
	"context"
	"errors"
	"log/slog"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tutorintelligence/intellinet-pdu-ctrl/internal/mcp/tools"
)

// LoggingMiddleware returns middleware that logs all incoming method
// calls. Tool calls additionally carry the tool name, and failures carry
// the device error code when the error is a tools.CodedError, so a log
// line distinguishes "outlet index rejected" from "device unreachable"
// without parsing the message.
func LoggingMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			start := time.Now()

			result, err := next(ctx, method, req)

			attrs := []slog.Attr{
				slog.String("method", method),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			if call, ok := req.(*sdkmcp.CallToolRequest); ok && call.Params != nil {
				attrs = append(attrs, slog.String("tool", call.Params.Name))
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				var coded *tools.CodedError
				if errors.As(err, &coded) {
					attrs = append(attrs, slog.String("code", coded.Code))
				}
				slog.LogAttrs(ctx, slog.LevelError, "method call failed", attrs...)
			} else {
				slog.LogAttrs(ctx, slog.LevelInfo, "method call completed", attrs...)
			}

			return result, err
		}
	}
}
