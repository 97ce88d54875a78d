// Package progress defines the Observer contract that transcode workers
// report frame progress through, together with the FrameTracker that derives
// frame counters from ffmpeg status lines.
package progress
