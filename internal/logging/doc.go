// Package logging assembles structured slog loggers and formatting helpers
// used across vidbatch.
//
// It owns the console and JSON handlers, exposes context-aware helpers that
// tag log lines with run IDs, operations, and video names, and provides a
// no-op logger for tests. WarnWithContext and ErrorWithContext keep warning
// and failure lines carrying an event type and a hint for the operator.
package logging
