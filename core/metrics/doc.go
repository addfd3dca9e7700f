// Package metrics defines the sink interfaces used to record scheduling
// activity. Concrete sinks (Prometheus, InfluxDB, fan-out) live in
// infra/metrics; the scheduler itself only sees these interfaces.
package metrics
