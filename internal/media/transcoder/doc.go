// Package transcoder adapts the ffmpeg command line to the Transcoder
// interface consumed by the burn and frame workers.
//
// Probe failures are reported as services.ErrProbeFailed. Run streams the
// diagnostic output line by line so callers can track progress without
// buffering the whole stream, and reports a non-zero exit as an exit code so
// workers decide how to classify it.
package transcoder
