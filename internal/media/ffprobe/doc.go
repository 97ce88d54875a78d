// Package ffprobe runs the narrow set of ffprobe queries the batch pipeline
// needs: container duration, first video stream frame rate, and decoded
// frame count.
//
// Parsing is split from execution so answers such as "N/A", empty output, or
// csv lines with a trailing comma can be tested without a binary.
package ffprobe
