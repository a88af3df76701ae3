// Package place converts raw GovMetric Place records into the portal's
// County and Municipality view-model.
//
// The transformation is pure and synchronous: it normalises status
// strings, derives service-availability flags from service names, maps
// report type codes, and skips malformed records at the smallest
// possible granularity, logging each skip. A bad municipality never
// takes down its county, and a bad county field never aborts the run.
//
// The package also provides a SQLite-backed cache repository so county
// browsing survives upstream outages.
package place
