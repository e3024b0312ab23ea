/*
Package observability provides Prometheus instrumentation for the selection
engine's remote surfaces.

Metrics register on the default registry at init time; hosts expose them by
mounting promhttp.Handler alongside the adapter of their choice.
*/
package observability
