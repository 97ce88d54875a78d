package frames

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"vidbatch/internal/logging"
	"vidbatch/internal/report"
	"vidbatch/internal/services"
	"vidbatch/internal/testsupport"
)

func newTestBatch(fake *testsupport.FakeTranscoder) *Batch {
	return NewBatch(newTestExtractor(fake), logging.NewNop())
}

func TestBatchMissingInputDirIsNoop(t *testing.T) {
	base := t.TempDir()
	rep, err := newTestBatch(testsupport.NewFakeTranscoder()).Run(context.Background(), Request{
		InputDir:      filepath.Join(base, "missing"),
		OutputDir:     filepath.Join(base, "frames"),
		FrameInterval: 5,
	})
	if err != nil || rep.Total() != 0 {
		t.Fatalf("expected empty report without error, got %+v, %v", rep, err)
	}
}

func TestBatchEmptyInputDirIsNoop(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteText(t, filepath.Join(base, "in", "clip.flv"), "x")
	fake := testsupport.NewFakeTranscoder()
	rep, err := newTestBatch(fake).Run(context.Background(), Request{
		InputDir:      filepath.Join(base, "in"),
		OutputDir:     filepath.Join(base, "frames"),
		FrameInterval: 5,
	})
	if err != nil || rep.Total() != 0 || fake.CallCount() != 0 {
		t.Fatalf("expected no work, got %+v, %v", rep, err)
	}
}

func TestBatchRejectsInvalidInterval(t *testing.T) {
	_, err := newTestBatch(testsupport.NewFakeTranscoder()).Run(context.Background(), Request{InputDir: t.TempDir(), FrameInterval: 0})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestBatchParallelKeepsOrderAndSkipsFailures(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		name := "sequential"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			base := t.TempDir()
			in := filepath.Join(base, "in")
			for _, n := range []string{"d.mkv", "b.mov", "a.mp4", "c.avi", "e.mp4"} {
				testsupport.WriteFile(t, filepath.Join(in, n), 8)
			}
			fake := testsupport.NewFakeTranscoder()
			fake.ExitCodes = map[string]int{"c.avi": 1}

			rep, err := newTestBatch(fake).Run(context.Background(), Request{
				InputDir:          in,
				OutputDir:         filepath.Join(base, "frames"),
				FrameInterval:     5,
				UseMultithreading: parallel,
				Workers:           3,
			})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			var order []string
			for _, item := range rep.Items {
				order = append(order, item.Video)
			}
			if strings.Join(order, ",") != "a.mp4,b.mov,c.avi,d.mkv,e.mp4" {
				t.Fatalf("unexpected order %v", order)
			}
			if rep.Failed != 1 || rep.Succeeded != 4 || rep.Items[2].Status != report.StatusFailed {
				t.Fatalf("unexpected report %+v", rep)
			}
			if rep.Items[0].Frames != 3 {
				t.Fatalf("expected 3 frames for a.mp4, got %d", rep.Items[0].Frames)
			}
			dirs := testsupport.ListNames(t, filepath.Join(base, "frames"))
			if len(dirs) != 5 {
				t.Fatalf("expected a directory per video, got %v", dirs)
			}
		})
	}
}

func TestBatchCancelled(t *testing.T) {
	base := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(base, "in", "a.mp4"), 8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestBatch(testsupport.NewFakeTranscoder()).Run(ctx, Request{
		InputDir:      filepath.Join(base, "in"),
		OutputDir:     filepath.Join(base, "frames"),
		FrameInterval: 5,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

// cancellingTranscoder cancels the batch context from inside the first run.
type cancellingTranscoder struct {
	*testsupport.FakeTranscoder
	cancel context.CancelFunc
}

func (c cancellingTranscoder) Run(ctx context.Context, args []string, onLine func(string)) (int, error) {
	c.cancel()
	return c.FakeTranscoder.Run(ctx, args, onLine)
}

func TestBatchCancelledMidRunStopsRemainingVideos(t *testing.T) {
	base := t.TempDir()
	for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
		testsupport.WriteFile(t, filepath.Join(base, "in", name), 8)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake := testsupport.NewFakeTranscoder()
	tc := cancellingTranscoder{FakeTranscoder: fake, cancel: cancel}
	batch := NewBatch(NewExtractor(tc, SettingsFromConfig(nil), logging.NewNop()), logging.NewNop())

	rep, err := batch.Run(ctx, Request{
		InputDir:          filepath.Join(base, "in"),
		OutputDir:         filepath.Join(base, "frames"),
		FrameInterval:     5,
		UseMultithreading: true,
		Workers:           1,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if rep.Total() != 1 || rep.Items[0].Video != "a.mp4" || rep.Items[0].Status != report.StatusFailed {
		t.Fatalf("only the interrupted video should be reported: %+v", rep)
	}
	if fake.CallCount() != 1 {
		t.Fatalf("remaining videos must not run, calls=%d", fake.CallCount())
	}
}
