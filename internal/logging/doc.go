// Package logging constructs the slog loggers used across gavel and
// standardizes the structured fields attached to pipeline events.
package logging
