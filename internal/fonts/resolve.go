package fonts

import (
	"os"
	"strings"

	"golang.org/x/image/font/sfnt"
)

// ResolveFamilyName returns the family name (nameID 1) declared by the font
// at path, trimmed. Any failure reports ok=false: unreadable or corrupt
// files, collections (ttcf), a missing record, or an empty name.
//
// sfnt.Font.Name takes the first family record stored as Windows UCS-2 or
// Macintosh Roman. Name records are sorted by platform, so a Macintosh
// record wins when a font carries both; the two hold the same family in
// practice.
func ResolveFamilyName(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	font, err := sfnt.ParseReaderAt(f)
	if err != nil {
		return "", false
	}
	name, err := font.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return "", false
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}
