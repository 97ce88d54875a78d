// Package frames samples still images from videos.
//
// Extractor probes a video's frame count and rate, asks ffmpeg for one JPEG
// every FrameInterval frames, and renames the temporary outputs so each file
// records its approximate source frame. Batch runs the extractor over a
// folder, optionally on a bounded worker pool.
package frames
