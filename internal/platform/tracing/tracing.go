// Package tracing exposes the process tracer. The provider is whatever the
// host process installed via otel.SetTracerProvider; the default no-op
// provider keeps spans free when tracing is not configured.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns the named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}
