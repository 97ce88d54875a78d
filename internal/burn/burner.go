package burn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"vidbatch/internal/config"
	"vidbatch/internal/fileutil"
	"vidbatch/internal/fonts"
	"vidbatch/internal/logging"
	"vidbatch/internal/media/transcoder"
	"vidbatch/internal/progress"
	"vidbatch/internal/scan"
	"vidbatch/internal/services"
	"vidbatch/internal/subtitles"
)

// Options are the per-run switches a caller may set.
type Options struct {
	UseGPU           bool `json:"use_gpu"`
	StopOnError      bool `json:"stop_on_error"`
	CheckSystemFonts bool `json:"check_system_fonts"`
}

// Encoding selects encoders, presets, and the progress total estimate.
type Encoding struct {
	HWAccel     string
	GPUEncoder  string
	GPUPreset   string
	CPUEncoder  string
	CPUPreset   string
	ProgressFPS string
	AssumedFPS  float64
}

// EncodingFromConfig copies the burn section of cfg.
func EncodingFromConfig(cfg *config.Config) Encoding {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return Encoding{
		HWAccel:     cfg.Burn.HWAccel,
		GPUEncoder:  cfg.Burn.GPUEncoder,
		GPUPreset:   cfg.Burn.GPUPreset,
		CPUEncoder:  cfg.Burn.CPUEncoder,
		CPUPreset:   cfg.Burn.CPUPreset,
		ProgressFPS: cfg.Burn.ProgressFPS,
		AssumedFPS:  cfg.Burn.AssumedFPS,
	}
}

// Job is one video paired with its subtitle.
type Job struct {
	Video    scan.Video
	Subtitle string
	Output   string
	FontDir  string
	Options  Options
}

// Burner renders a subtitle track into a video with one transcoder run.
type Burner struct {
	tc     transcoder.Transcoder
	enc    Encoding
	logger *slog.Logger
}

// NewBurner constructs a Burner.
func NewBurner(tc transcoder.Transcoder, enc Encoding, logger *slog.Logger) *Burner {
	if enc.AssumedFPS <= 0 {
		enc.AssumedFPS = 30
	}
	return &Burner{
		tc:     tc,
		enc:    enc,
		logger: logging.NewComponentLogger(logger, "burn"),
	}
}

// Burn validates the job's assets, runs the transcoder, and confirms the
// output exists. Every failure is returned to the caller.
func (b *Burner) Burn(ctx context.Context, job Job, obs progress.Observer) error {
	if obs == nil {
		obs = progress.Nop{}
	}
	ctx = services.WithVideo(ctx, job.Video.Name())
	logger := logging.WithContext(ctx, b.logger)

	if err := fileutil.CheckReadable(job.Subtitle); err != nil {
		return services.Wrap(services.ErrAssetNotFound, "burn", "check subtitle", job.Subtitle, err)
	}
	if !job.Options.CheckSystemFonts {
		if err := b.checkFonts(job); err != nil {
			return err
		}
	}

	args, err := BuildArgs(job, b.enc)
	if err != nil {
		return err
	}

	total, err := b.expectedFrames(ctx, logger, job.Video.Path)
	if err != nil {
		return err
	}

	logger.Debug("executing ffmpeg",
		logging.String(logging.FieldSubtitle, job.Subtitle),
		logging.String(logging.FieldOutput, job.Output),
		logging.Bool("use_gpu", job.Options.UseGPU),
		logging.Int(logging.FieldFrameTotal, total),
		logging.String("command", strings.Join(args, " ")),
	)

	obs.Begin(job.Video.Name(), total)
	tracker := progress.NewFrameTracker(obs)
	started := time.Now()
	code, err := b.tc.Run(ctx, args, func(line string) { tracker.HandleLine(line) })
	if err == nil && code != 0 {
		err = &services.TranscodeError{Operation: "burn", Input: job.Video.Path, ExitCode: code}
	} else if err != nil {
		err = services.Wrap(services.ErrTranscodeFailed, "burn", "run ffmpeg", job.Video.Path, err)
	}
	if err == nil && !fileutil.IsRegular(job.Output) {
		err = services.Wrap(services.ErrOutputMissing, "burn", "verify output", job.Output, nil)
	}
	obs.End(err)
	if err != nil {
		return err
	}

	logger.Info("subtitle burn complete",
		logging.String(logging.FieldEventType, "burn_complete"),
		logging.String(logging.FieldOutput, job.Output),
		logging.Int(logging.FieldFrame, tracker.Current()),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (b *Burner) checkFonts(job Job) error {
	if !fileutil.IsDir(job.FontDir) {
		return services.Wrap(services.ErrAssetNotFound, "burn", "check font dir", job.FontDir, nil)
	}
	coverage, err := fonts.Check(job.Subtitle, job.FontDir)
	if err != nil {
		return err
	}
	if !coverage.Complete() {
		return services.NewMissingFontsError(job.Subtitle, coverage.Missing)
	}
	return nil
}

// expectedFrames estimates the frame total reported to progress observers.
func (b *Burner) expectedFrames(ctx context.Context, logger *slog.Logger, path string) (int, error) {
	duration, err := b.tc.ProbeDuration(ctx, path)
	if err == nil && duration <= 0 {
		err = fmt.Errorf("non-positive duration %v", duration)
	}
	if err != nil {
		if errors.Is(err, services.ErrProbeFailed) {
			return 0, err
		}
		return 0, services.Wrap(services.ErrProbeFailed, "burn", "probe duration", path, err)
	}

	fps := b.enc.AssumedFPS
	if b.enc.ProgressFPS == config.ProgressFPSProbed {
		rate, err := b.tc.ProbeFrameRate(ctx, path)
		if err == nil && rate.Float() > 0 {
			fps = rate.Float()
		} else {
			logging.WarnWithContext(logger, "frame rate probe failed; using assumed rate", "frame_rate_fallback",
				logging.Float64("assumed_fps", fps),
				logging.String(logging.FieldErrorHint, "progress percentages are estimates for this video"),
				logging.Any("cause", err),
			)
		}
	}
	return int(duration * fps), nil
}

// BuildArgs assembles the ffmpeg command line for job.
func BuildArgs(job Job, enc Encoding) ([]string, error) {
	filter, err := Filter(job.Subtitle, job.FontDir, job.Options.CheckSystemFonts)
	if err != nil {
		return nil, err
	}

	args := []string{"-y", "-nostdin", "-hide_banner"}
	encoder, preset := enc.CPUEncoder, enc.CPUPreset
	if job.Options.UseGPU {
		args = append(args, "-hwaccel", enc.HWAccel)
		encoder, preset = enc.GPUEncoder, enc.GPUPreset
	}
	args = append(args,
		"-i", job.Video.Path,
		"-vf", filter,
		"-c:v", encoder,
		"-pix_fmt", "yuv420p",
		"-preset", preset,
		"-c:a", "copy",
		job.Output,
	)
	return args, nil
}

// Filter returns the video filter that renders subtitle. ASS subtitles carry
// a fontsdir unless system fonts are used.
func Filter(subtitle, fontDir string, systemFonts bool) (string, error) {
	switch subtitles.FormatOf(subtitle) {
	case subtitles.FormatASS:
		filter := "ass='" + EscapeFilterPath(subtitle) + "'"
		if !systemFonts {
			filter += ":fontsdir='" + EscapeFilterPath(fontDir) + "'"
		}
		return filter, nil
	case subtitles.FormatSRT:
		return "subtitles='" + EscapeFilterPath(subtitle) + "'", nil
	default:
		return "", services.Wrap(services.ErrUnsupportedFormat, "burn", "build filter", filepath.Ext(subtitle), nil)
	}
}

// EscapeFilterPath makes path safe inside a single-quoted filter option: it
// is made absolute, uses forward slashes, and escapes ':' and '\''.
func EscapeFilterPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	path = filepath.ToSlash(path)
	path = strings.ReplaceAll(path, "'", `'\''`)
	return strings.ReplaceAll(path, ":", `\:`)
}
