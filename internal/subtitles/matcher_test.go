package subtitles

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindPrefersASS(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "ep01.srt"))
	touch(t, filepath.Join(dir, "ep01.ass"))
	touch(t, filepath.Join(dir, "ep02.srt"))

	got, ok := Find("ep01", dir)
	if !ok || got != filepath.Join(dir, "ep01.ass") {
		t.Fatalf("Find(ep01) = %q, %v", got, ok)
	}
	got, ok = Find("ep02", dir)
	if !ok || got != filepath.Join(dir, "ep02.srt") {
		t.Fatalf("Find(ep02) = %q, %v", got, ok)
	}
	if !filepath.IsAbs(got) {
		t.Fatalf("expected absolute path, got %q", got)
	}
}

func TestFindMisses(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "ep03.vtt"))
	if err := os.Mkdir(filepath.Join(dir, "ep04.ass"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, base := range []string{"ep03", "ep04", "missing", ""} {
		if got, ok := Find(base, dir); ok {
			t.Fatalf("Find(%q) unexpectedly matched %q", base, got)
		}
	}
	if _, ok := Find("ep03", filepath.Join(dir, "nope")); ok {
		t.Fatal("missing directory should not match")
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]string{
		"/s/a.ass": FormatASS,
		"/s/a.ASS": FormatASS,
		"/s/a.srt": FormatSRT,
		"/s/a.vtt": "",
		"/s/a":     "",
	}
	for path, want := range tests {
		if got := FormatOf(path); got != want {
			t.Fatalf("FormatOf(%q) = %q, want %q", path, got, want)
		}
	}
}
