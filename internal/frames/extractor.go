package frames

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"vidbatch/internal/config"
	"vidbatch/internal/fileutil"
	"vidbatch/internal/logging"
	"vidbatch/internal/media/transcoder"
	"vidbatch/internal/progress"
	"vidbatch/internal/scan"
	"vidbatch/internal/services"
)

const (
	tempPrefix  = "temp_"
	tempPattern = tempPrefix + "%04d.jpg"
	tempGlob    = tempPrefix + "*.jpg"
)

// Settings are the output image parameters shared by every job.
type Settings struct {
	Width       int
	Height      int
	JPEGQuality int
	HWAccel     string
	GPUDecoder  string
}

// SettingsFromConfig copies the grab section of cfg.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return Settings{
		Width:       cfg.Grab.Width,
		Height:      cfg.Grab.Height,
		JPEGQuality: cfg.Grab.JPEGQuality,
		HWAccel:     cfg.Burn.HWAccel,
		GPUDecoder:  cfg.Grab.GPUDecoder,
	}
}

// Job is one video to sample.
type Job struct {
	Video         scan.Video
	OutputDir     string
	FrameInterval int
	UseGPU        bool
}

// Result lists the frames written for one video.
type Result struct {
	Dir         string
	Files       []string
	TotalFrames int
	ExtractFPS  float64
}

// Extractor samples frames from a single video.
type Extractor struct {
	tc       transcoder.Transcoder
	settings Settings
	logger   *slog.Logger
}

// NewExtractor constructs an Extractor.
func NewExtractor(tc transcoder.Transcoder, settings Settings, logger *slog.Logger) *Extractor {
	def := SettingsFromConfig(nil)
	if settings.Width <= 0 || settings.Height <= 0 {
		settings.Width, settings.Height = def.Width, def.Height
	}
	if settings.JPEGQuality <= 0 {
		settings.JPEGQuality = def.JPEGQuality
	}
	if settings.HWAccel == "" {
		settings.HWAccel = def.HWAccel
	}
	if settings.GPUDecoder == "" {
		settings.GPUDecoder = def.GPUDecoder
	}
	return &Extractor{tc: tc, settings: settings, logger: logging.NewComponentLogger(logger, "frames")}
}

// Extract writes every FrameInterval-th frame of the video as a JPEG named
// {base}_{n}_of_{total}.jpg inside OutputDir/{base}. The embedded frame
// number is derived from the output index and is an estimate.
func (e *Extractor) Extract(ctx context.Context, job Job, obs progress.Observer) (Result, error) {
	if obs == nil {
		obs = progress.Nop{}
	}
	if job.FrameInterval < 1 {
		return Result{}, services.Wrap(services.ErrValidation, "frames", "extract", fmt.Sprintf("frame interval must be at least 1, got %d", job.FrameInterval), nil)
	}
	ctx = services.WithVideo(ctx, job.Video.Name())
	logger := logging.WithContext(ctx, e.logger)

	total, err := e.tc.ProbeFrameCount(ctx, job.Video.Path)
	if err != nil {
		return Result{}, probeError("probe frame count", job.Video.Path, err)
	}
	rate, err := e.tc.ProbeFrameRate(ctx, job.Video.Path)
	if err == nil && rate.Float() <= 0 {
		err = fmt.Errorf("invalid frame rate %s", rate)
	}
	if err != nil {
		return Result{}, probeError("probe frame rate", job.Video.Path, err)
	}
	extractFPS := rate.Float() / float64(job.FrameInterval)

	dir := filepath.Join(job.OutputDir, job.Video.Base)
	if err := fileutil.EnsureDir(dir); err != nil {
		return Result{}, err
	}
	stale, _ := filepath.Glob(filepath.Join(dir, tempGlob))
	if err := fileutil.RemoveFiles(stale); err != nil {
		return Result{}, fmt.Errorf("remove stale frames: %w", err)
	}

	args := e.BuildArgs(job.Video.Path, dir, extractFPS, job.UseGPU)
	logger.Debug("executing ffmpeg",
		logging.Int(logging.FieldFrameTotal, total),
		logging.Float64("extract_fps", extractFPS),
		logging.String("command", strings.Join(args, " ")),
	)

	obs.Begin(job.Video.Name(), total/job.FrameInterval)
	tracker := progress.NewFrameTracker(obs)
	started := time.Now()
	code, err := e.tc.Run(ctx, args, func(line string) { tracker.HandleLine(line) })
	if err == nil && code != 0 {
		err = &services.TranscodeError{Operation: "grab", Input: job.Video.Path, ExitCode: code}
	} else if err != nil {
		err = services.Wrap(services.ErrTranscodeFailed, "frames", "run ffmpeg", job.Video.Path, err)
	}
	if err != nil {
		obs.End(err)
		return Result{Dir: dir, TotalFrames: total}, err
	}

	files, err := renameFrames(dir, job.Video.Base, job.FrameInterval, total)
	obs.End(err)
	if err != nil {
		return Result{Dir: dir, TotalFrames: total}, err
	}

	logger.Info("frame extraction complete",
		logging.String(logging.FieldEventType, "grab_complete"),
		logging.String(logging.FieldOutput, dir),
		logging.Int("frames_written", len(files)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Result{Dir: dir, Files: files, TotalFrames: total, ExtractFPS: extractFPS}, nil
}

// BuildArgs assembles the ffmpeg command line that writes temporary JPEGs into dir.
func (e *Extractor) BuildArgs(input, dir string, fps float64, useGPU bool) []string {
	args := []string{"-y", "-nostdin", "-hide_banner"}
	if useGPU {
		args = append(args, "-hwaccel", e.settings.HWAccel, "-c:v", e.settings.GPUDecoder)
	}
	filter := fmt.Sprintf("fps=%s,scale=%d:%d", strconv.FormatFloat(fps, 'f', -1, 64), e.settings.Width, e.settings.Height)
	return append(args,
		"-i", input,
		"-vf", filter,
		"-c:v", "mjpeg",
		"-q:v", strconv.Itoa(e.settings.JPEGQuality),
		"-vsync", "vfr",
		filepath.Join(dir, tempPattern),
	)
}

// FrameName returns the final file name of the idx-th (1-based) extracted frame.
func FrameName(base string, idx, interval, total int) string {
	return fmt.Sprintf("%s_%d_of_%d.jpg", base, idx*interval, total)
}

func renameFrames(dir, base string, interval, total int) ([]string, error) {
	temps, err := filepath.Glob(filepath.Join(dir, tempGlob))
	if err != nil {
		return nil, err
	}
	sort.Slice(temps, func(i, j int) bool { return tempIndex(temps[i]) < tempIndex(temps[j]) })
	files := make([]string, 0, len(temps))
	for i, temp := range temps {
		target := filepath.Join(dir, FrameName(base, i+1, interval, total))
		if err := os.Rename(temp, target); err != nil {
			return files, fmt.Errorf("rename %s: %w", filepath.Base(temp), err)
		}
		files = append(files, target)
	}
	return files, nil
}

// tempIndex returns the sequence number of a temp frame; the zero padding
// stops being lexically ordered past 9999 frames.
func tempIndex(path string) int {
	name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), tempPrefix), ".jpg")
	n, err := strconv.Atoi(name)
	if err != nil {
		return -1
	}
	return n
}

func probeError(operation, path string, err error) error {
	if errors.Is(err, services.ErrProbeFailed) {
		return err
	}
	return services.Wrap(services.ErrProbeFailed, "frames", operation, path, err)
}
