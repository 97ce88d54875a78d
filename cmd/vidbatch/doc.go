// Command vidbatch burns subtitles into videos and extracts still frames
// with ffmpeg.
//
// Processing commands (burn, grab, run) read their folders and options from
// the configuration file and accept flags that override individual values
// for one invocation. serve exposes the same pipeline over HTTP. fonts,
// history, status and config are read-only helpers.
//
// Exit status is 1 whenever a command returns an error, including a batch
// with no eligible videos and a burn aborted by --stop-on-error.
package main
