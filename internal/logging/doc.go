// Package logging configures the process-wide slog logger.
//
// Two output formats are supported: a compact console format for
// interactive use and JSON for log shippers. Both honor the level and
// output paths from the application config, and both understand the
// shared attribute keys in attrs.go so item and stage identifiers look
// the same everywhere.
package logging
