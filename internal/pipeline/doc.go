// Package pipeline runs the optional subtitle burn followed by the optional
// frame grab as one run. Frame grabbing reads from the burn output folder,
// so a combined run samples the freshly burned videos.
//
// Each run gets a uuid, holds an advisory lock on the folder it writes to,
// and is reported to the metrics recorder and run history when configured.
package pipeline
