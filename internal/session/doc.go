// Package session manages login sessions for the Lien Portal.
//
// Sessions are created by authenticating against the upstream
// GovMetric API and handed to clients as a signed JWT carrying the
// session ID. The session record itself lives server-side in one of
// two stores selected by the remember-me flag: a durable SQLite store
// that survives restarts, or an ephemeral store (in-memory or Redis)
// that does not.
//
// The Manager is the only writer of session state. Expiry is a normal
// lifecycle event, not an error: expired and corrupt records read as
// "no session" and are cleared on sight, and a background sweep prunes
// what validation never touches.
package session
