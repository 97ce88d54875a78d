// Package services defines shared utilities consumed by the batch workers,
// orchestrators, and their callers.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, operation names, and the current
//     video for logging and history records.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures (missing assets, missing fonts, probe and transcode failures)
//     with errors.Is and errors.As.
//
// Use these helpers when wiring new batch logic so failure classification
// stays uniform across the CLI, the HTTP API, and the run history.
package services
