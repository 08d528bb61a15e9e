// Package metrics registers the Prometheus collectors of the service and
// provides the Fiber middleware and /metrics handler that expose them.
package metrics
