package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigureHoneycomb(t *testing.T) {
	env := map[string]string{}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
	setenv := func(k, v string) error {
		env[k] = v
		return nil
	}

	assert.False(t, ConfigureHoneycomb(lookup, setenv))
	assert.NotContains(t, env, "OTEL_EXPORTER_OTLP_HEADERS")

	env[EnvHoneycombKey] = "secret"
	assert.True(t, ConfigureHoneycomb(lookup, setenv))
	assert.Equal(t, "https://api.honeycomb.io", env["OTEL_EXPORTER_OTLP_ENDPOINT"])
	assert.Equal(t, "x-honeycomb-team=secret,x-honeycomb-dataset=bandbattle", env["OTEL_EXPORTER_OTLP_HEADERS"])
}

func TestNoopTracer(t *testing.T) {
	_, span := NoopTracer().Start(context.Background(), "battle.turn")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}
