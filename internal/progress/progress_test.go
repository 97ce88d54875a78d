package progress_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"vidbatch/internal/logging"
	"vidbatch/internal/progress"
)

type recorder struct {
	label  string
	total  int
	frames []int
	ended  bool
	err    error
}

func (r *recorder) Begin(label string, total int) { r.label, r.total = label, total }
func (r *recorder) ObserveFrame(frame int) { r.frames = append(r.frames, frame) }
func (r *recorder) End(err error) { r.ended, r.err = true, err }

func TestParseFrame(t *testing.T) {
	tests := []struct {
		line string
		want int
		ok   bool
	}{
		{"frame=  120 fps= 60 q=28.0 size=   1024kB time=00:00:04.00", 120, true},
		{"frame=7", 7, true},
		{"Stream #0:0: Video: h264", 0, false},
		{"frame= abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := progress.ParseFrame(tt.line)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("ParseFrame(%q) = %d, %v; want %d, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFrameTrackerIsMonotonicAndUnclamped(t *testing.T) {
	rec := &recorder{}
	rec.Begin("clip", 100)
	tracker := progress.NewFrameTracker(rec)

	lines := []string{
		"Input #0, matroska",
		"frame=   10 fps=0.0",
		"frame=   10 fps=0.0",
		"frame=    5 fps=0.0",
		"frame=   60 fps=30",
		"frame=  130 fps=30",
	}
	for _, line := range lines {
		tracker.HandleLine(line)
	}
	want := []int{10, 60, 130}
	if len(rec.frames) != len(want) {
		t.Fatalf("frames = %v, want %v", rec.frames, want)
	}
	for i := range want {
		if rec.frames[i] != want[i] {
			t.Fatalf("frames = %v, want %v", rec.frames, want)
		}
	}
	if tracker.Current() != 130 {
		t.Fatalf("Current = %d, want 130", tracker.Current())
	}
}

func TestMultiAndCombine(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	obs := progress.Multi(a, nil, b)
	obs.Begin("clip", 10)
	obs.ObserveFrame(4)
	obs.End(errors.New("boom"))
	for _, r := range []*recorder{a, b} {
		if r.label != "clip" || len(r.frames) != 1 || !r.ended || r.err == nil {
			t.Fatalf("unexpected recorder state %+v", r)
		}
	}

	var built int
	factory := progress.Combine(func() progress.Observer { built++; return &recorder{} }, nil, progress.NopFactory)
	factory().Begin("x", 1)
	if built != 1 {
		t.Fatalf("expected one recorder built, got %d", built)
	}
	if _, ok := progress.Combine()().(progress.Nop); !ok {
		t.Fatal("empty Combine should yield Nop")
	}
}

func TestLogObserverSamplesBuckets(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	obs := progress.NewLogObserver(logger, 25)
	obs.Begin("clip.mp4", 100)
	for frame := 1; frame <= 120; frame++ {
		obs.ObserveFrame(frame)
	}
	obs.End(nil)

	lines := strings.Count(buf.String(), "progress")
	// 25, 50, 75 and 100 percent.
	if lines != 4 {
		t.Fatalf("expected 4 sampled lines, got %d:\n%s", lines, buf.String())
	}
	if !strings.Contains(buf.String(), "percent=100") {
		t.Fatalf("expected percent clamped at 100 in logs:\n%s", buf.String())
	}
}
