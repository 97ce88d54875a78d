package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Video is one discovered input file.
type Video struct {
	Path string
	// Base is the file name without its extension; it keys subtitle
	// matching and output naming.
	Base string
}

// Name returns the file name including the extension.
func (v Video) Name() string {
	return filepath.Base(v.Path)
}

// Videos lists the regular files (or symlinks to regular files) directly inside dir whose extension is in
// extensions (compared case-insensitively), sorted by file name. Errors from
// reading dir are returned unchanged so callers can test for fs.ErrNotExist.
func Videos(dir string, extensions []string) ([]Video, error) {
	allowed := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", dir, err)
	}

	var videos []Video
	for _, entry := range entries {
		name := entry.Name()
		if !isRegular(absDir, entry) {
			continue
		}
		ext := filepath.Ext(name)
		if _, ok := allowed[strings.ToLower(ext)]; !ok {
			continue
		}
		videos = append(videos, Video{
			Path: filepath.Join(absDir, name),
			Base: strings.TrimSuffix(name, ext),
		})
	}
	sort.Slice(videos, func(i, j int) bool { return videos[i].Path < videos[j].Path })
	return videos, nil
}

func isRegular(dir string, entry os.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	return err == nil && info.Mode().IsRegular()
}
