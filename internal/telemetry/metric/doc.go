// Package metric provides Prometheus metrics for tachikv.
//
// Each process instance owns its own registry, exposed on a side HTTP
// listener. The event loop updates counters and gauges inline; those
// operations are atomic and do not block.
package metric
