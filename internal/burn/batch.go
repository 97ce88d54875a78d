package burn

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"vidbatch/internal/config"
	"vidbatch/internal/fileutil"
	"vidbatch/internal/logging"
	"vidbatch/internal/progress"
	"vidbatch/internal/report"
	"vidbatch/internal/scan"
	"vidbatch/internal/services"
	"vidbatch/internal/subtitles"
)

// OutputSuffix is appended to the video base name to form the output file name.
const OutputSuffix = "_subtitled.mp4"

// Request describes one batch burn.
type Request struct {
	VideoDir    string
	SubtitleDir string
	OutputDir   string
	FontDir     string
	Options     Options
	// Extensions overrides the eligible video set; empty uses the default.
	Extensions []string
	// Observe builds a progress observer per video; nil discards progress.
	Observe progress.Factory
}

// Batch burns subtitles into every eligible video of a folder, one at a time.
type Batch struct {
	burner *Burner
	logger *slog.Logger
}

// NewBatch constructs a Batch around burner.
func NewBatch(burner *Burner, logger *slog.Logger) *Batch {
	return &Batch{burner: burner, logger: logging.NewComponentLogger(logger, "burn")}
}

// OutputPath returns the burned output location for a video base name.
func OutputPath(outputDir, base string) string {
	return filepath.Join(outputDir, base+OutputSuffix)
}

// Run processes videos in name order. Videos without a subtitle are skipped.
// A failed video is recorded and, when StopOnError is set, ends the batch
// with that error alongside the report so far.
func (b *Batch) Run(ctx context.Context, req Request) (report.Report, error) {
	rep := report.New(report.OperationBurn)
	logger := logging.WithContext(ctx, b.logger)

	extensions := config.NormalizeExtensions(req.Extensions, config.DefaultBurnExtensions())
	videos, err := scan.Videos(req.VideoDir, extensions)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rep, services.Wrap(services.ErrAssetNotFound, "burn", "scan videos", "video folder "+req.VideoDir+" does not exist", err)
		}
		return rep, services.Wrap(services.ErrAssetNotFound, "burn", "scan videos", req.VideoDir, err)
	}
	if len(videos) == 0 {
		return rep, services.Wrap(services.ErrNoEligibleVideos, "burn", "scan videos", req.VideoDir, nil)
	}

	logger.Info("subtitle burn batch started",
		logging.String(logging.FieldEventType, "burn_batch_start"),
		logging.Int("video_count", len(videos)),
		logging.String("video_dir", req.VideoDir),
		logging.Bool("use_gpu", req.Options.UseGPU),
	)

	observe := req.Observe
	if observe == nil {
		observe = progress.NopFactory
	}

	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		subtitle, ok := subtitles.Find(video.Base, req.SubtitleDir)
		if !ok {
			logging.WarnWithContext(logger, "no subtitle for video; skipping", "subtitle_missing",
				logging.String(logging.FieldVideo, video.Name()),
				logging.String(logging.FieldErrorHint, "add "+video.Base+".ass or "+video.Base+".srt to the subtitle folder"),
				logging.String(logging.FieldImpact, "video left without burned subtitles"),
			)
			rep.Add(report.Item{Video: video.Name(), Status: report.StatusSkipped})
			continue
		}

		if err := fileutil.EnsureDir(req.OutputDir); err != nil {
			return rep, err
		}
		job := Job{
			Video:    video,
			Subtitle: subtitle,
			Output:   OutputPath(req.OutputDir, video.Base),
			FontDir:  req.FontDir,
			Options:  req.Options,
		}

		started := time.Now()
		err := b.burner.Burn(ctx, job, observe())
		elapsed := time.Since(started)
		if err != nil {
			attrs := append(logging.Failure(err, failureHint(err)),
				logging.String(logging.FieldVideo, video.Name()),
				logging.String(logging.FieldSubtitle, subtitle),
			)
			logging.ErrorWithContext(logger, "subtitle burn failed", "burn_failed", attrs...)
			item := report.Failure(video.Name(), err, elapsed)
			item.Subtitle = subtitle
			rep.Add(item)
			if req.Options.StopOnError || ctx.Err() != nil {
				return rep, err
			}
			continue
		}
		rep.Add(report.Item{
			Video:    video.Name(),
			Subtitle: subtitle,
			Output:   job.Output,
			Status:   report.StatusSucceeded,
			Duration: elapsed,
		})
	}

	logger.Info("subtitle burn batch finished",
		logging.String(logging.FieldEventType, "burn_batch_complete"),
		logging.Int("succeeded", rep.Succeeded),
		logging.Int("failed", rep.Failed),
		logging.Int("skipped", rep.Skipped),
	)
	return rep, nil
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, services.ErrMissingFonts):
		return "add the missing fonts to the font folder or enable check_system_fonts"
	case errors.Is(err, services.ErrProbeFailed):
		return "the input could not be probed; check that it is a playable video"
	case errors.Is(err, services.ErrTranscodeFailed):
		return "rerun with debug logging to see the ffmpeg command and output"
	case errors.Is(err, services.ErrAssetNotFound):
		return "check the subtitle and font folders"
	default:
		return "check logs for details"
	}
}
