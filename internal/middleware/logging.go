package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/planboard/internal/metrics"
	"github.com/mmynk/planboard/internal/rpc"
)

// LoggingInterceptor returns a Connect interceptor that logs every call and
// counts it in metrics.RPCRequests. Document calls are logged with their path,
// and writes with the write token they carry.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure
			attrs := requestAttrs(ctx, req)

			resp, err := next(ctx, req)

			attrs = append(attrs, slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			code := "ok"
			var connectErr *connect.Error
			switch {
			case err == nil:
				slog.LogAttrs(ctx, slog.LevelInfo, "RPC ok", attrs...)
			case errors.As(err, &connectErr):
				code = connectErr.Code().String()
				attrs = append(attrs, slog.String("code", code), slog.String("error", connectErr.Message()))
				slog.LogAttrs(ctx, slog.LevelWarn, "RPC error", attrs...)
			default:
				code = connect.CodeUnknown.String()
				attrs = append(attrs, slog.Any("error", err))
				slog.LogAttrs(ctx, slog.LevelError, "RPC error", attrs...)
			}
			metrics.RPCRequests.WithLabelValues(procedure, code).Inc()

			return resp, err
		}
	}
}

func requestAttrs(ctx context.Context, req connect.AnyRequest) []slog.Attr {
	attrs := []slog.Attr{slog.String("procedure", req.Spec().Procedure)}
	if subject := GetSubject(ctx); subject != "" {
		attrs = append(attrs, slog.String("subject", subject))
	}
	switch msg := req.Any().(type) {
	case rpc.WriteRequest:
		attrs = append(attrs, slog.String("path", msg.DocumentPath()))
		if token := msg.WriteToken(); token != "" {
			attrs = append(attrs, slog.String("writer", token))
		}
	case rpc.DocumentRequest:
		attrs = append(attrs, slog.String("path", msg.DocumentPath()))
	}
	return attrs
}
