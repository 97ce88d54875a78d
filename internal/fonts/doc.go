// Package fonts resolves family names from TrueType/OpenType files and checks
// that every font a subtitle's styles reference is present in a font
// directory before ffmpeg is asked to render it.
//
// The name table is read directly: the burn filter matches fonts by the
// Windows-platform family record, so that is the record consulted here.
package fonts
