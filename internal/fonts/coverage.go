package fonts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/unicode"

	"vidbatch/internal/services"
)

// Coverage is the outcome of checking a subtitle's style fonts against a font directory.
type Coverage struct {
	Required  []string
	Available []string
	Missing   []string
}

// Complete reports whether every required family is available.
func (c Coverage) Complete() bool {
	return len(c.Missing) == 0
}

// Family is one font file and its resolved family name.
type Family struct {
	Path     string
	Name     string
	Resolved bool
}

// Check lists the style fonts named by subtitlePath that no .ttf/.otf file in
// fontDir declares. Comparison is case-insensitive and Missing is sorted.
func Check(subtitlePath, fontDir string) (Coverage, error) {
	text, err := ReadSubtitleText(subtitlePath)
	if err != nil {
		return Coverage{}, err
	}
	families, err := ListFamilies(fontDir)
	if err != nil {
		return Coverage{}, err
	}

	folder := cases.Fold()
	required := StyleFonts(text)
	available := make(map[string]struct{}, len(families))
	var names []string
	for _, fam := range families {
		if !fam.Resolved {
			continue
		}
		names = append(names, fam.Name)
		available[folder.String(fam.Name)] = struct{}{}
	}

	var missing []string
	for _, name := range required {
		if _, ok := available[folder.String(name)]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return Coverage{Required: required, Available: names, Missing: missing}, nil
}

// StyleFonts returns the font family of every "Style:" line, deduplicated
// with case preserved. Lines with fewer than two comma fields are ignored.
func StyleFonts(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.HasPrefix(line, "Style:") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 2 {
			continue
		}
		name := strings.TrimSpace(parts[1])
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ReadSubtitleText loads a subtitle as UTF-8, accepting a UTF-8 BOM or a
// UTF-16 BOM of either byte order.
func ReadSubtitleText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(services.ErrFontCheck, "fonts", "read subtitle", path, err)
	}
	switch {
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", services.Wrap(services.ErrFontCheck, "fonts", "decode subtitle", path, err)
		}
		return string(decoded), nil
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	}
	if !utf8.Valid(data) {
		return "", services.Wrap(services.ErrFontCheck, "fonts", "decode subtitle", path, fmt.Errorf("not valid UTF-8 text"))
	}
	return string(data), nil
}

// IsFontFile reports whether name has a .ttf or .otf extension in any case.
func IsFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}

// ListFamilies resolves every font file directly inside dir, sorted by file name.
func ListFamilies(dir string) ([]Family, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFontCheck, "fonts", "list fonts", dir, err)
	}
	var out []Family
	for _, entry := range entries {
		if entry.IsDir() || !IsFontFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		name, ok := ResolveFamilyName(path)
		out = append(out, Family{Path: path, Name: name, Resolved: ok})
	}
	return out, nil
}
