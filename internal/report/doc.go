// Package report holds the per-video outcome records that batch
// orchestrators return to the CLI, the HTTP API, and the run history.
package report
