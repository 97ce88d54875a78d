package transcoder

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"vidbatch/internal/media/ffprobe"
	"vidbatch/internal/services"
)

// Transcoder is the external media toolchain used by the burn and frame workers.
type Transcoder interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	ProbeFrameRate(ctx context.Context, path string) (ffprobe.Rational, error)
	ProbeFrameCount(ctx context.Context, path string) (int, error)
	// Run executes one transcode. onLine receives every diagnostic line.
	// A non-zero exit is reported through the exit code, not the error.
	Run(ctx context.Context, args []string, onLine func(string)) (int, error)
}

// FFmpeg implements Transcoder with the ffmpeg and ffprobe binaries.
type FFmpeg struct {
	Binary  string
	Prober  *ffprobe.Prober
	Timeout time.Duration
}

// New constructs an FFmpeg transcoder. A zero timeout disables the per-process limit.
func New(ffmpegBinary, ffprobeBinary string, timeout time.Duration) *FFmpeg {
	ffmpegBinary = strings.TrimSpace(ffmpegBinary)
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return &FFmpeg{
		Binary:  ffmpegBinary,
		Prober:  ffprobe.New(ffprobeBinary),
		Timeout: timeout,
	}
}

func (f *FFmpeg) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.Timeout > 0 {
		return context.WithTimeout(ctx, f.Timeout)
	}
	return context.WithCancel(ctx)
}

// ProbeDuration returns the container duration in seconds.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	duration, err := f.Prober.Duration(ctx, path)
	if err != nil {
		return 0, services.Wrap(services.ErrProbeFailed, "transcoder", "probe duration", path, err)
	}
	return duration, nil
}

// ProbeFrameRate returns the first video stream's frame rate.
func (f *FFmpeg) ProbeFrameRate(ctx context.Context, path string) (ffprobe.Rational, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	rate, err := f.Prober.FrameRate(ctx, path)
	if err != nil {
		return ffprobe.Rational{}, services.Wrap(services.ErrProbeFailed, "transcoder", "probe frame rate", path, err)
	}
	return rate, nil
}

// ProbeFrameCount returns the decoded frame count of the first video stream.
func (f *FFmpeg) ProbeFrameCount(ctx context.Context, path string) (int, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()
	count, err := f.Prober.FrameCount(ctx, path)
	if err != nil {
		return 0, services.Wrap(services.ErrProbeFailed, "transcoder", "probe frame count", path, err)
	}
	return count, nil
}

// Run starts ffmpeg with args and streams its stderr to onLine until the
// process exits and the diagnostic stream is drained.
func (f *FFmpeg) Run(ctx context.Context, args []string, onLine func(string)) (int, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, f.Binary, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("ffmpeg stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("start ffmpeg: %w", err)
	}

	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(SplitDiagnosticLines)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || onLine == nil {
			continue
		}
		onLine(line)
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// ffmpeg blocks on a full pipe until its stderr is read to the end.
		_, _ = io.Copy(io.Discard, stderr)
	}

	waitErr := cmd.Wait()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return -1, fmt.Errorf("ffmpeg interrupted: %w", ctxErr)
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("wait ffmpeg: %w", waitErr)
	}
	if scanErr != nil {
		return 0, fmt.Errorf("read ffmpeg diagnostics: %w", scanErr)
	}
	return 0, nil
}

// SplitDiagnosticLines is a bufio.SplitFunc that treats both '\n' and '\r'
// as line terminators. ffmpeg rewrites its status line with carriage returns.
func SplitDiagnosticLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
