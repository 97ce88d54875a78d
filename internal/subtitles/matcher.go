package subtitles

import (
	"path/filepath"
	"strings"

	"vidbatch/internal/fileutil"
)

// Format tags for matched subtitles.
const (
	FormatASS = "ass"
	FormatSRT = "srt"
)

// searchOrder lists subtitle extensions in precedence order.
var searchOrder = []string{".ass", ".srt"}

// Find returns the subtitle for baseName inside dir. An .ass file always
// wins over an .srt file with the same base name.
func Find(baseName, dir string) (string, bool) {
	if strings.TrimSpace(baseName) == "" || strings.TrimSpace(dir) == "" {
		return "", false
	}
	for _, ext := range searchOrder {
		candidate := filepath.Join(dir, baseName+ext)
		if !fileutil.IsRegular(candidate) {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			return candidate, true
		}
		return abs, true
	}
	return "", false
}

// FormatOf returns the format tag for a subtitle path, or "" when the
// extension is not one the burner can render.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ass":
		return FormatASS
	case ".srt":
		return FormatSRT
	default:
		return ""
	}
}
