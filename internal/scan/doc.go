// Package scan discovers eligible video files in an input folder.
package scan
