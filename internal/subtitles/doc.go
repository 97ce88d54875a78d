// Package subtitles pairs videos with external subtitle files by base name.
package subtitles
