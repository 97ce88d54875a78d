package frames

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"vidbatch/internal/config"
	"vidbatch/internal/logging"
	"vidbatch/internal/progress"
	"vidbatch/internal/report"
	"vidbatch/internal/scan"
	"vidbatch/internal/services"
)

// Request describes one batch frame extraction.
type Request struct {
	InputDir          string
	OutputDir         string
	FrameInterval     int
	UseGPU            bool
	UseMultithreading bool
	// Workers bounds concurrent extractions; zero uses runtime.NumCPU.
	Workers int
	// Extensions overrides the eligible video set; empty uses the default.
	Extensions []string
	Observe    progress.Factory
}

// Batch extracts frames from every eligible video of a folder.
type Batch struct {
	extractor *Extractor
	logger    *slog.Logger
}

// NewBatch constructs a Batch around extractor.
func NewBatch(extractor *Extractor, logger *slog.Logger) *Batch {
	return &Batch{extractor: extractor, logger: logging.NewComponentLogger(logger, "frames")}
}

// Run samples every video. Per-video failures are logged and recorded in
// the report; only an invalid request or a cancelled context returns an
// error. Report items keep name order even when videos run concurrently.
func (b *Batch) Run(ctx context.Context, req Request) (report.Report, error) {
	rep := report.New(report.OperationGrab)
	if req.FrameInterval < 1 {
		return rep, services.Wrap(services.ErrValidation, "frames", "validate request", fmt.Sprintf("frame interval must be at least 1, got %d", req.FrameInterval), nil)
	}
	logger := logging.WithContext(ctx, b.logger)

	extensions := config.NormalizeExtensions(req.Extensions, config.DefaultGrabExtensions())
	videos, err := scan.Videos(req.InputDir, extensions)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(logger, "input folder unreadable; nothing to extract", "grab_input_unreadable",
				logging.String("input_dir", req.InputDir),
				logging.Error(err),
				logging.String(logging.FieldImpact, "no frames extracted"),
			)
		}
		videos = nil
	}
	if len(videos) == 0 {
		logger.Info("no videos to extract frames from",
			logging.String(logging.FieldEventType, "grab_batch_empty"),
			logging.String("input_dir", req.InputDir),
		)
		return rep, nil
	}

	workers := 1
	if req.UseMultithreading {
		workers = req.Workers
		if workers <= 0 {
			workers = runtime.NumCPU()
		}
	}
	logger.Info("frame extraction batch started",
		logging.String(logging.FieldEventType, "grab_batch_start"),
		logging.Int("video_count", len(videos)),
		logging.Int("workers", workers),
		logging.Int("frame_interval", req.FrameInterval),
	)

	observe := req.Observe
	if observe == nil {
		observe = progress.NopFactory
	}

	items := make([]report.Item, len(videos))
	done := make([]bool, len(videos))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, video := range videos {
		if groupCtx.Err() != nil {
			break
		}
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			items[i] = b.extractOne(groupCtx, logger, req, video, observe())
			done[i] = true
			return nil
		})
	}
	waitErr := group.Wait()

	for i := range items {
		if done[i] {
			rep.Add(items[i])
		}
	}
	if waitErr != nil {
		return rep, waitErr
	}
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	logger.Info("frame extraction batch finished",
		logging.String(logging.FieldEventType, "grab_batch_complete"),
		logging.Int("succeeded", rep.Succeeded),
		logging.Int("failed", rep.Failed),
	)
	return rep, nil
}

func (b *Batch) extractOne(ctx context.Context, logger *slog.Logger, req Request, video scan.Video, obs progress.Observer) report.Item {
	started := time.Now()
	result, err := b.extractor.Extract(ctx, Job{
		Video:         video,
		OutputDir:     req.OutputDir,
		FrameInterval: req.FrameInterval,
		UseGPU:        req.UseGPU,
	}, obs)
	elapsed := time.Since(started)
	if err != nil {
		attrs := append(logging.Failure(err, "the video was skipped; check that it decodes with ffprobe"),
			logging.String(logging.FieldVideo, video.Name()),
		)
		logging.ErrorWithContext(logger, "frame extraction failed", "grab_failed", attrs...)
		item := report.Failure(video.Name(), err, elapsed)
		item.Output = result.Dir
		return item
	}
	return report.Item{
		Video:    video.Name(),
		Output:   result.Dir,
		Status:   report.StatusSucceeded,
		Frames:   len(result.Files),
		Duration: elapsed,
	}
}
