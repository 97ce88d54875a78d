// Package history records pipeline runs and their per-video outcomes in a
// local SQLite database so that past runs can be listed from the CLI and
// the HTTP API.
//
// The database lives at history.path, or history.db under paths.state_dir.
// A schema version row guards against opening a file written by an
// incompatible release.
package history
