// Package observability wires OpenTelemetry tracing and metrics.
//
// InitTracer and InitMeter install global providers exporting over OTLP/HTTP.
// ClientMetrics holds the instruments httpclient records for every request.
// Without Init calls the global providers are no-ops, so instrumentation is free.
package observability
