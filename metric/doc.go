// Package metric provides Prometheus metrics for the scan engine.
//
// A MetricsRegistry owns a private Prometheus registry pre-populated with
// the core engine metrics (operation counts, chunk throughput, risk score
// distribution, fault and backpressure counters) plus Go runtime
// collectors. Components register their own collectors through
// Register(service, name, collector) so the daemon exposes everything from
// a single /metrics endpoint served by Server.
package metric
