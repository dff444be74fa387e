// Package prometheus renders portalcore metrics for Prometheus scraping.
//
// [NewExporter] accepts a [portalcore.Portal] and exposes an [http.Handler]
// that renders all portal counters and histograms in Prometheus text exposition
// format. Counter names are prefixed portal_*_total; the single histogram is
// portal_reload_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate portal state.
package prometheus
