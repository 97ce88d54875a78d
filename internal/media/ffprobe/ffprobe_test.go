package ffprobe

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"20.000000\n", 20, false},
		{"  3.5 ", 3.5, false},
		{"N/A\n", 0, true},
		{"", 0, true},
		{"0", 0, true},
		{"-4", 0, true},
		{"abc", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseDuration(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
			t.Fatalf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseRational(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"30/1\n", 30, false},
		{"30000/1001,\n", 30000.0 / 1001.0, false},
		{"25", 25, false},
		{"0/0", 0, true},
		{"", 0, true},
		{"x/1", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseRational(tt.input)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseRational(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if !tt.wantErr && math.Abs(got.Float()-tt.want) > 1e-9 {
			t.Fatalf("ParseRational(%q) = %v, want %v", tt.input, got.Float(), tt.want)
		}
	}
	if s := (Rational{Num: 24000, Den: 1001}).String(); s != "24000/1001" {
		t.Fatalf("unexpected String: %s", s)
	}
}

func TestParseFrameCount(t *testing.T) {
	if n, err := ParseFrameCount("600,\n"); err != nil || n != 600 {
		t.Fatalf("ParseFrameCount = %d, %v", n, err)
	}
	for _, bad := range []string{"", "N/A", "-1", "many"} {
		if _, err := ParseFrameCount(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestArgsEndWithPath(t *testing.T) {
	for name, args := range map[string][]string{
		"duration":    DurationArgs("/v/a.mp4"),
		"frame_rate":  FrameRateArgs("/v/a.mp4"),
		"frame_count": FrameCountArgs("/v/a.mp4"),
	} {
		if args[len(args)-1] != "/v/a.mp4" {
			t.Fatalf("%s args should end with the path: %v", name, args)
		}
	}
	if !strings.Contains(strings.Join(FrameCountArgs("x"), " "), "-count_frames") {
		t.Fatal("frame count query must decode frames")
	}
}

func TestProberRunsBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires unix")
	}
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\ncase \"$*\" in\n*format=duration*) echo 12.5 ;;\n*nb_read_frames*) echo 375, ;;\n*r_frame_rate*) echo 30/1 ;;\nesac\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	p := New(stub)
	ctx := context.Background()
	if d, err := p.Duration(ctx, "/v/a.mp4"); err != nil || d != 12.5 {
		t.Fatalf("Duration = %v, %v", d, err)
	}
	if n, err := p.FrameCount(ctx, "/v/a.mp4"); err != nil || n != 375 {
		t.Fatalf("FrameCount = %v, %v", n, err)
	}
	if r, err := p.FrameRate(ctx, "/v/a.mp4"); err != nil || r.Float() != 30 {
		t.Fatalf("FrameRate = %v, %v", r, err)
	}
}

func TestProberReportsFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires unix")
	}
	stub := filepath.Join(t.TempDir(), "ffprobe")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho 'moov atom not found' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	_, err := New(stub).Duration(context.Background(), "/v/broken.mp4")
	if err == nil || !strings.Contains(err.Error(), "moov atom not found") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}
