// Package telemetry installs the process-wide OpenTelemetry tracer provider.
//
// The game service creates spans through otel.Tracer regardless of setup.
// Without Init, or with the "none" exporter, those spans are no-ops.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
)

// ErrUnknownExporter is returned for an unsupported exporter name
var ErrUnknownExporter = errors.New("unknown trace exporter")

// Exporter names accepted by Config.Exporter
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// Config controls trace export
type Config struct {
	// ServiceName identifies this process in exported spans.
	ServiceName string

	// ServiceVersion is attached as service.version.
	ServiceVersion string

	// Exporter is "none" (default) or "stdout".
	Exporter string

	// Writer receives stdout-exported spans. Defaults to os.Stderr so the
	// MCP stdio stream stays clean.
	Writer io.Writer
}

// ShutdownFunc flushes and stops the tracer provider
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init configures the global tracer provider and returns its shutdown
// function. The returned function is never nil.
func Init(ctx context.Context, cfg Config) (ShutdownFunc, error) {
	switch cfg.Exporter {
	case "", ExporterNone:
		return noopShutdown, nil
	case ExporterStdout:
	default:
		return noopShutdown, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Exporter)
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return noopShutdown, fmt.Errorf("create exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
	)

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
