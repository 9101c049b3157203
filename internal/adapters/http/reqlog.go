package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/gymdemand/internal/pkg/telemetry"
)

type ctxKey struct{}

// RequestContextMiddleware opens a server span for the request and stores a
// logger carrying the request and trace IDs in the user context, so services
// log and trace under the same request.
func RequestContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, span := telemetry.Tracer().Start(c.UserContext(), c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String(telemetry.AttrHTTPMethod, c.Method()),
				attribute.String(telemetry.AttrHTTPPath, c.Path()),
			),
		)
		defer span.End()

		logger := slog.Default()
		if rid, _ := c.Locals("requestid").(string); rid != "" {
			logger = logger.With("request_id", rid)
			span.SetAttributes(attribute.String(telemetry.AttrRequestID, rid))
		}
		if sc := span.SpanContext(); sc.HasTraceID() {
			logger = logger.With("trace_id", sc.TraceID().String())
		}
		c.SetUserContext(context.WithValue(ctx, ctxKey{}, logger))

		err := c.Next()

		status := c.Response().StatusCode()
		span.SetAttributes(attribute.Int(telemetry.AttrHTTPStatus, status))
		if err != nil || status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, "request failed")
		}
		return err
	}
}

// LoggerFromCtx returns the request-scoped logger, or the default logger.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
