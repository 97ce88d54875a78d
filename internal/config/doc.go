// Package config loads, normalizes, and validates vidbatch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and overlays VIDBATCH_* environment
// variables. The Config type carries the default folders, encoder choices,
// and frame extraction knobs that the CLI and HTTP API fall back to when a
// request leaves them unset.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical extension lists, and clear validation errors.
package config
