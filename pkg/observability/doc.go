// Package observability wires Prometheus collectors and OpenTelemetry spans
// into the engine through domain.LifecycleHooks.
package observability
