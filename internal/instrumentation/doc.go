// Package instrumentation provides OpenTelemetry metrics and tracing for
// the events API.
//
// Metrics default to the Prometheus exporter, exposed by the dedicated
// metrics server; tracing is off by default and can export via OTLP/HTTP
// or stdout. The Provider owns both providers and is shut down with the
// process for a final flush.
package instrumentation
