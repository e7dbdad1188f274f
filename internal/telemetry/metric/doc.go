// Package metric provides Prometheus metrics for SessKeep.
//
// It owns a private registry exposing session lifecycle counters, sweep
// statistics, and HTTP request metrics at /metrics. The Metrics type
// doubles as the session store's stats recorder, so the store stays
// free of any Prometheus dependency.
package metric
