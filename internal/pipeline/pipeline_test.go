package pipeline_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"vidbatch/internal/fileutil"
	"vidbatch/internal/history"
	"vidbatch/internal/logging"
	"vidbatch/internal/metrics"
	"vidbatch/internal/pipeline"
	"vidbatch/internal/report"
	"vidbatch/internal/services"
	"vidbatch/internal/testsupport"
)

func fixedID(id string) pipeline.Option {
	return pipeline.WithIDGenerator(func() string { return id })
}

func openHistory(t *testing.T, path string) *history.Store {
	t.Helper()
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestDefaultRequestFollowsConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Grab.FrameInterval = 7
	req := pipeline.DefaultRequest(cfg)
	if req.BurnSubtitles || !req.GrabFrames {
		t.Fatalf("expected grab-only default, got %+v", req)
	}
	if req.OutputFolder != cfg.Paths.OutputDir || req.FrameOutputFolder != cfg.Paths.FrameOutputDir {
		t.Fatalf("unexpected folders: %+v", req)
	}
	if req.FrameInterval != 7 || !req.UseGPU || !req.UseMultithreading || req.StopOnError || req.CheckSystemFonts {
		t.Fatalf("unexpected options: %+v", req)
	}
	if req.Kind() != "grab" {
		t.Fatalf("unexpected kind %q", req.Kind())
	}
}

func TestRunBurnThenGrabRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInputDirs())
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.VideoDir, "clip.mp4"), 16)
	testsupport.WriteText(t, filepath.Join(cfg.Paths.SubtitleDir, "clip.srt"), "1\n00:00:01,000 --> 00:00:02,000\nhi\n")

	store := openHistory(t, cfg.HistoryPath())
	rec := metrics.New()
	fake := testsupport.NewFakeTranscoder()

	req := pipeline.DefaultRequest(cfg)
	req.BurnSubtitles = true
	runner := pipeline.New(cfg, fake, logging.NewNop(), pipeline.WithHistory(store), pipeline.WithMetrics(rec), fixedID("run-1"))

	res, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.RunID != "run-1" || res.Kind != "pipeline" || len(res.Reports) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Reports[0].Operation != report.OperationBurn || res.Reports[0].Succeeded != 1 {
		t.Fatalf("unexpected burn report %+v", res.Reports[0])
	}
	grab := res.Reports[1]
	if grab.Operation != report.OperationGrab || grab.Succeeded != 1 || grab.Items[0].Video != "clip_subtitled.mp4" {
		t.Fatalf("grab should read the burn output, got %+v", grab)
	}

	frames := testsupport.ListNames(t, filepath.Join(cfg.Paths.FrameOutputDir, "clip_subtitled"))
	if strings.Join(frames, ",") != "clip_subtitled_10_of_600.jpg,clip_subtitled_15_of_600.jpg,clip_subtitled_5_of_600.jpg" {
		t.Fatalf("unexpected frames %v", frames)
	}

	run, err := store.Get(context.Background(), "run-1")
	if err != nil || run == nil {
		t.Fatalf("history lookup: %#v, %v", run, err)
	}
	if run.Status != history.StatusSucceeded || run.Kind != "pipeline" || len(run.Items) != 2 {
		t.Fatalf("unexpected history run %#v", run)
	}
}

func TestRunRejectsInvalidRequest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := openHistory(t, cfg.HistoryPath())
	req := pipeline.DefaultRequest(cfg)
	req.FrameInterval = 0

	_, err := pipeline.New(cfg, testsupport.NewFakeTranscoder(), logging.NewNop(), pipeline.WithHistory(store), fixedID("bad")).
		Run(context.Background(), req)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if run, _ := store.Get(context.Background(), "bad"); run != nil {
		t.Fatalf("invalid requests should not be recorded: %#v", run)
	}
}

func TestRunFailsWhenOutputLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	lock, err := fileutil.AcquireRunLock(cfg.Paths.FrameOutputDir)
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer lock.Release()

	_, err = pipeline.New(cfg, testsupport.NewFakeTranscoder(), logging.NewNop()).
		Run(context.Background(), pipeline.DefaultRequest(cfg))
	if !errors.Is(err, services.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunBurnWithoutVideosFails(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithInputDirs())
	store := openHistory(t, cfg.HistoryPath())
	req := pipeline.DefaultRequest(cfg)
	req.BurnSubtitles = true

	res, err := pipeline.New(cfg, testsupport.NewFakeTranscoder(), logging.NewNop(), pipeline.WithHistory(store), fixedID("empty")).
		Run(context.Background(), req)
	if !errors.Is(err, services.ErrNoEligibleVideos) {
		t.Fatalf("expected ErrNoEligibleVideos, got %v", err)
	}
	if len(res.Reports) != 1 {
		t.Fatalf("grab should not run after a burn failure: %+v", res.Reports)
	}
	run, _ := store.Get(context.Background(), "empty")
	if run == nil || run.Status != history.StatusFailed || run.Error == "" {
		t.Fatalf("expected failed history run, got %#v", run)
	}
}

func TestRunGrabOnlyWithEmptyOutputSucceeds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	res, err := pipeline.New(cfg, testsupport.NewFakeTranscoder(), logging.NewNop()).
		Run(context.Background(), pipeline.DefaultRequest(cfg))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Reports) != 1 || res.Reports[0].Total() != 0 {
		t.Fatalf("expected one empty grab report, got %+v", res.Reports)
	}
	if res.RunID == "" {
		t.Fatal("expected a generated run id")
	}
}

func TestRunWithNoStagesDoesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	req := pipeline.DefaultRequest(cfg)
	req.GrabFrames = false
	fake := testsupport.NewFakeTranscoder()

	res, err := pipeline.New(cfg, fake, logging.NewNop()).Run(context.Background(), req)
	if err != nil || len(res.Reports) != 0 || fake.CallCount() != 0 {
		t.Fatalf("expected no work, got %+v, %v", res, err)
	}
	if res.Kind != "noop" {
		t.Fatalf("unexpected kind %q", res.Kind)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	req := pipeline.Request{BurnSubtitles: true, GrabFrames: true}
	err := req.Validate()
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	for _, want := range []string{"video_folder", "font_folder", "frame_interval"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %s", err, want)
		}
	}
	if strings.Count(err.Error(), "; output_folder is required") != 1 {
		t.Fatalf("duplicate problems in %q", err)
	}
}
