// Package logging provides structured logging for the Lien Portal service.
//
// It wraps the standard library's log/slog with service-wide defaults:
// JSON or text output, level filtering, and default attributes for the
// service name and version. Components derive their own loggers with
// With to attach component-scoped fields.
package logging
