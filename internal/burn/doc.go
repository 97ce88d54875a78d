// Package burn renders external subtitle tracks into videos.
//
// Burner handles one video: it checks the subtitle and its fonts, builds the
// ffmpeg filter, tracks frame progress, and verifies the output. Batch walks
// a video folder in name order, pairs each video with a subtitle, and decides
// whether a failure ends the run.
package burn
