package ffprobe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Prober runs ffprobe queries against a single media file.
type Prober struct {
	Binary string
}

// New returns a Prober for the given binary, defaulting to "ffprobe".
func New(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{Binary: binary}
}

// DurationArgs builds the container duration query.
func DurationArgs(path string) []string {
	return []string{"-v", "error", "-show_entries", "format=duration", "-of", "default=noprint_wrappers=1:nokey=1", path}
}

// FrameRateArgs builds the first video stream frame rate query.
func FrameRateArgs(path string) []string {
	return []string{"-v", "error", "-select_streams", "v:0", "-show_entries", "stream=r_frame_rate", "-of", "csv=p=0", path}
}

// FrameCountArgs builds the decoded frame count query. ffprobe decodes the
// whole stream to answer it, so it is the slowest of the three.
func FrameCountArgs(path string) []string {
	return []string{"-v", "error", "-select_streams", "v:0", "-count_frames", "-show_entries", "stream=nb_read_frames", "-of", "csv=p=0", path}
}

// Duration returns the container duration in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	out, err := p.query(ctx, DurationArgs(path))
	if err != nil {
		return 0, err
	}
	return ParseDuration(out)
}

// FrameRate returns the first video stream's r_frame_rate.
func (p *Prober) FrameRate(ctx context.Context, path string) (Rational, error) {
	out, err := p.query(ctx, FrameRateArgs(path))
	if err != nil {
		return Rational{}, err
	}
	return ParseRational(out)
}

// FrameCount returns the number of decoded frames in the first video stream.
func (p *Prober) FrameCount(ctx context.Context, path string) (int, error) {
	out, err := p.query(ctx, FrameCountArgs(path))
	if err != nil {
		return 0, err
	}
	return ParseFrameCount(out)
}

func (p *Prober) query(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 || strings.TrimSpace(args[len(args)-1]) == "" {
		return "", errors.New("ffprobe: empty path")
	}
	binary := "ffprobe"
	if p != nil && strings.TrimSpace(p.Binary) != "" {
		binary = p.Binary
	}
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

// ParseDuration interprets a duration answer. "N/A", empty output and
// non-positive values are errors.
func ParseDuration(output string) (float64, error) {
	value := firstField(output)
	if value == "" || strings.EqualFold(value, "N/A") {
		return 0, fmt.Errorf("ffprobe: duration unavailable (%q)", strings.TrimSpace(output))
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: parse duration %q: %w", value, err)
	}
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) || parsed <= 0 {
		return 0, fmt.Errorf("ffprobe: invalid duration %v", parsed)
	}
	return parsed, nil
}

// ParseFrameCount interprets an nb_read_frames answer.
func ParseFrameCount(output string) (int, error) {
	value := firstField(output)
	if value == "" || strings.EqualFold(value, "N/A") {
		return 0, fmt.Errorf("ffprobe: frame count unavailable (%q)", strings.TrimSpace(output))
	}
	count, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("ffprobe: parse frame count %q: %w", value, err)
	}
	if count < 0 {
		return 0, fmt.Errorf("ffprobe: invalid frame count %d", count)
	}
	return count, nil
}

// firstField returns the first non-empty line with csv separators trimmed.
// Some ffprobe builds emit a trailing comma for csv=p=0 output.
func firstField(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if idx := strings.IndexByte(line, ','); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		return line
	}
	return ""
}
