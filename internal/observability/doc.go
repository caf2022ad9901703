// Package observability provides logging, metrics, and request context
// propagation for the paper search service.
//
// Logging uses zerolog with JSON output by default and a console format
// for development. Metrics are Prometheus counters and histograms covering
// the aggregation pipeline: per-source search outcomes, filtering, scoring,
// deduplication, and end-to-end request durations.
//
// Request identity (a per-search request ID) travels through
// context.Context via the helpers in context.go so that every log line
// emitted during one federated search can be correlated.
package observability
