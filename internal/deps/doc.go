// Package deps reports whether the external binaries vidbatch shells out to
// can be found.
package deps
