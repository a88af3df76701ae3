// Package metrics records portal usage to InfluxDB.
//
// Recording is optional and entirely best-effort: writes are batched
// and non-blocking, and a disabled or unreachable InfluxDB never
// affects request handling. Recorded series cover login outcomes,
// county reads by data source, and upstream request latency.
package metrics
