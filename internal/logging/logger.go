// Package logging configures the process-wide slog logger. Structured JSON
// when running in Kubernetes or a deployed environment, colored text locally.
// Either way, records emitted with a context carrying an OTel span get
// trace_id and span_id attached so logs can be correlated with traces.
package logging

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// NewWithServiceContext builds the logger and stamps the service identity
// onto every record.
func NewWithServiceContext(serviceName, version string) *slog.Logger {
	return New().With(
		slog.String("service", serviceName),
		slog.String("version", version),
		slog.String("environment", os.Getenv("ENV")),
	)
}

func New() *slog.Logger {
	var inner slog.Handler
	if deployed() {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level(),
			AddSource: true,
		})
	} else {
		inner = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level(),
		})
	}
	return slog.New(&contextHandler{inner: inner, colorize: !deployed()})
}

// deployed reports whether structured JSON output is wanted. The k8s service
// host variable is injected into every pod, so it doubles as the signal.
func deployed() bool {
	if _, inK8s := os.LookupEnv("KUBERNETES_SERVICE_HOST"); inK8s {
		return true
	}
	env := os.Getenv("ENV")
	return env == "prod" || env == "dev"
}

func level() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		if deployed() {
			return slog.LevelInfo
		}
		return slog.LevelDebug
	}
}

// contextHandler enriches records with the OTel trace context and, for local
// text output, marks error messages in red.
type contextHandler struct {
	inner    slog.Handler
	colorize bool
}

func (h *contextHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.inner.Enabled(ctx, lvl)
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		r.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}

	if h.colorize && r.Level >= slog.LevelError {
		colored := slog.NewRecord(r.Time, r.Level, "\x1b[31m"+r.Message+"\x1b[0m", r.PC)
		r.Attrs(func(a slog.Attr) bool {
			colored.AddAttrs(a)
			return true
		})
		return h.inner.Handle(ctx, colored)
	}

	return h.inner.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{inner: h.inner.WithAttrs(attrs), colorize: h.colorize}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{inner: h.inner.WithGroup(name), colorize: h.colorize}
}
