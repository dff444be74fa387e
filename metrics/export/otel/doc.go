// Package otel provides OpenTelemetry metric exporter bindings for portalcore
// counters and histograms.
//
// [NewExporter] registers Int64ObservableCounter instruments for each portal
// metric and Int64ObservableGauge per histogram bucket. A single callback reads
// [portalcore.Portal.MetricsSnapshot] on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider — callers supply the Meter.
//   - Mutate portal state.
package otel
