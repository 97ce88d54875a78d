package frames

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vidbatch/internal/logging"
	"vidbatch/internal/scan"
	"vidbatch/internal/services"
	"vidbatch/internal/testsupport"
)

func newTestExtractor(fake *testsupport.FakeTranscoder) *Extractor {
	return NewExtractor(fake, SettingsFromConfig(nil), logging.NewNop())
}

func clipJob(t *testing.T, interval int) Job {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in", "clip.mp4")
	testsupport.WriteFile(t, path, 8)
	return Job{
		Video:         scan.Video{Path: path, Base: "clip"},
		OutputDir:     filepath.Join(dir, "frames"),
		FrameInterval: interval,
	}
}

func TestExtractSixHundredFramesEveryFifth(t *testing.T) {
	job := clipJob(t, 5)
	fake := testsupport.NewFakeTranscoder()
	fake.FramesToWrite = 120

	result, err := newTestExtractor(fake).Extract(context.Background(), job, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Files) != 120 || result.TotalFrames != 600 || result.ExtractFPS != 6 {
		t.Fatalf("unexpected result: files=%d total=%d fps=%v", len(result.Files), result.TotalFrames, result.ExtractFPS)
	}
	if filepath.Base(result.Files[0]) != "clip_5_of_600.jpg" {
		t.Fatalf("unexpected first file %s", result.Files[0])
	}
	if filepath.Base(result.Files[119]) != "clip_600_of_600.jpg" {
		t.Fatalf("unexpected last file %s", result.Files[119])
	}
	names := testsupport.ListNames(t, filepath.Join(job.OutputDir, "clip"))
	if len(names) != 120 {
		t.Fatalf("expected 120 files on disk, got %d", len(names))
	}
	for _, name := range names {
		if strings.HasPrefix(name, "temp_") {
			t.Fatalf("temporary file left behind: %s", name)
		}
	}
	if !strings.Contains(strings.Join(fake.LastCall(), " "), "-vf fps=6,scale=1920:1080") {
		t.Fatalf("unexpected filter in %v", fake.LastCall())
	}
}

func TestExtractIntervalOneNaming(t *testing.T) {
	job := clipJob(t, 1)
	fake := testsupport.NewFakeTranscoder()
	fake.Frames = 3

	result, err := newTestExtractor(fake).Extract(context.Background(), job, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	for i, file := range result.Files {
		want := fmt.Sprintf("clip_%d_of_3.jpg", i+1)
		if filepath.Base(file) != want {
			t.Fatalf("file %d = %s, want %s", i, filepath.Base(file), want)
		}
	}
}

func TestExtractRemovesStaleTemporaries(t *testing.T) {
	job := clipJob(t, 5)
	testsupport.WriteText(t, filepath.Join(job.OutputDir, "clip", "temp_0099.jpg"), "stale")
	fake := testsupport.NewFakeTranscoder()
	fake.FramesToWrite = 2

	result, err := newTestExtractor(fake).Extract(context.Background(), job, nil)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("stale temporaries should not be renamed: %v", result.Files)
	}
}

func TestExtractRerunOverwrites(t *testing.T) {
	job := clipJob(t, 5)
	extractor := newTestExtractor(testsupport.NewFakeTranscoder())
	for i := 0; i < 2; i++ {
		if _, err := extractor.Extract(context.Background(), job, nil); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}
	names := testsupport.ListNames(t, filepath.Join(job.OutputDir, "clip"))
	if strings.Join(names, ",") != "clip_10_of_600.jpg,clip_15_of_600.jpg,clip_5_of_600.jpg" {
		t.Fatalf("unexpected files after rerun: %v", names)
	}
}

func TestBuildArgsGPU(t *testing.T) {
	e := newTestExtractor(testsupport.NewFakeTranscoder())
	args := strings.Join(e.BuildArgs("/v/a.mp4", "/out/a", 7.5, true), " ")
	want := "-y -nostdin -hide_banner -hwaccel cuda -c:v h264_cuvid -i /v/a.mp4 -vf fps=7.5,scale=1920:1080 -c:v mjpeg -q:v 2 -vsync vfr /out/a/temp_%04d.jpg"
	if args != want {
		t.Fatalf("args mismatch\n got: %s\nwant: %s", args, want)
	}
	cpu := strings.Join(e.BuildArgs("/v/a.mp4", "/out/a", 6, false), " ")
	if strings.Contains(cpu, "hwaccel") || !strings.HasPrefix(cpu, "-y -nostdin -hide_banner -i /v/a.mp4") {
		t.Fatalf("unexpected cpu args: %s", cpu)
	}
}

func TestExtractProbeFailures(t *testing.T) {
	for name, mutate := range map[string]func(*testsupport.FakeTranscoder){
		"frame count": func(f *testsupport.FakeTranscoder) { f.FramesErr = errors.New("no stream") },
		"frame rate":  func(f *testsupport.FakeTranscoder) { f.RateErr = errors.New("no stream") },
		"zero rate":   func(f *testsupport.FakeTranscoder) { f.Rate.Num = 0 },
	} {
		t.Run(name, func(t *testing.T) {
			fake := testsupport.NewFakeTranscoder()
			mutate(fake)
			_, err := newTestExtractor(fake).Extract(context.Background(), clipJob(t, 5), nil)
			if !errors.Is(err, services.ErrProbeFailed) {
				t.Fatalf("expected ErrProbeFailed, got %v", err)
			}
			if fake.CallCount() != 0 {
				t.Fatal("transcoder must not run")
			}
		})
	}
}

func TestExtractNonZeroExitSkipsRename(t *testing.T) {
	job := clipJob(t, 5)
	fake := testsupport.NewFakeTranscoder()
	fake.ExitCodes = map[string]int{"clip.mp4": 1}
	result, err := newTestExtractor(fake).Extract(context.Background(), job, nil)
	var te *services.TranscodeError
	if !errors.As(err, &te) || te.ExitCode != 1 {
		t.Fatalf("expected TranscodeError, got %v", err)
	}
	if len(result.Files) != 0 {
		t.Fatalf("no files should be renamed: %v", result.Files)
	}
}

func TestExtractRejectsZeroInterval(t *testing.T) {
	_, err := newTestExtractor(testsupport.NewFakeTranscoder()).Extract(context.Background(), clipJob(t, 0), nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRenameFramesOrdersPastFourDigits(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"temp_10000.jpg", "temp_1001.jpg", "temp_0002.jpg"} {
		testsupport.WriteText(t, filepath.Join(dir, name), name)
	}
	files, err := renameFrames(dir, "clip", 1, 10000)
	if err != nil {
		t.Fatalf("renameFrames: %v", err)
	}
	got := make([]string, 0, len(files))
	for _, f := range files {
		got = append(got, filepath.Base(f))
	}
	want := "clip_1_of_10000.jpg,clip_2_of_10000.jpg,clip_3_of_10000.jpg"
	if strings.Join(got, ",") != want {
		t.Fatalf("got %v", got)
	}
	data, err := os.ReadFile(files[2])
	if err != nil || string(data) != "temp_10000.jpg" {
		t.Fatalf("last frame should come from temp_10000.jpg, got %q (%v)", data, err)
	}
}
