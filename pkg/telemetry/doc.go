// Package telemetry provides structured logging, Prometheus metrics, and
// run events for crossgen.
//
// Logging is built on zerolog with helpers for the fields that matter
// during generation: run ID, provider, variant path, and artifact path.
// Metrics cover run lifecycle, tree expansion (dimensions, variants,
// leaves), provider invocations, and written artifacts; a nil *Metrics is
// a valid no-op collector. Events are synchronous, UUID-stamped
// notifications that callers can subscribe to, e.g. to print a summary or
// feed a UI.
package telemetry
