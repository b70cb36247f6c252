// Package telemetry provides OpenTelemetry instrumentation for Honeycomb.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	serviceName    = "bandbattle"
	serviceVersion = "0.2.0"

	honeycombEndpoint = "https://api.honeycomb.io"
)

// Environment variables read by ConfigureHoneycomb.
const (
	EnvHoneycombKey     = "HONEYCOMB_BANDBATTLE_API_KEY"
	EnvHoneycombDataset = "HONEYCOMB_BANDBATTLE_DATASET"
)

// Span attribute keys shared by the battle spans.
const (
	AttrBattleID = attribute.Key("battle.id")
	AttrTurn     = attribute.Key("battle.turn")
	AttrActor    = attribute.Key("battle.actor")
	AttrAction   = attribute.Key("battle.action")
	AttrOutcome  = attribute.Key("battle.outcome")
)

// Setup initializes OpenTelemetry with OTLP HTTP exporter.
// It reads configuration from standard OTEL_* environment variables:
//   - OTEL_EXPORTER_OTLP_ENDPOINT: Honeycomb endpoint (https://api.honeycomb.io)
//   - OTEL_EXPORTER_OTLP_HEADERS: Headers including x-honeycomb-team=<api-key>
//
// Returns a shutdown function that should be called on application exit.
func Setup(ctx context.Context) (shutdown func(context.Context) error, err error) {
	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		return nil, err
	}

	// Own resource, not merged with Default(), to avoid schema URL conflicts
	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
			attribute.String("telemetry.sdk.language", "go"),
			attribute.String("telemetry.sdk.name", "opentelemetry"),
			attribute.String("host.name", getHostname()),
			attribute.String("os.type", runtime.GOOS),
			attribute.String("process.runtime.name", "go"),
			attribute.String("process.runtime.version", runtime.Version()),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// ConfigureHoneycomb points the OTLP exporter at Honeycomb and builds the
// auth header from our own env vars. The .env file may carry an unexpanded
// variable reference, so the header is constructed here. Returns false when
// no API key is set.
func ConfigureHoneycomb(lookup func(string) (string, bool), setenv func(string, string) error) bool {
	apiKey, _ := lookup(EnvHoneycombKey)
	if apiKey == "" {
		return false
	}
	dataset, _ := lookup(EnvHoneycombDataset)
	if dataset == "" {
		dataset = serviceName
	}
	_ = setenv("OTEL_EXPORTER_OTLP_ENDPOINT", honeycombEndpoint)
	_ = setenv("OTEL_EXPORTER_OTLP_HEADERS",
		fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
	return true
}

// Tracer returns a named tracer for the given component.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(serviceName + "/" + name)
}

// NoopTracer returns a no-op tracer for use when telemetry is disabled.
func NoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(serviceName + "/noop")
}

// getHostname returns the system hostname, or "unknown" if it cannot be determined.
func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
