package config

import (
	"fmt"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeBurn()
	c.normalizeGrab()
	c.normalizeTools()
	c.normalizeServer()
	c.normalizeLogging()
	return c.normalizeHistory()
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"paths.video_dir", &c.Paths.VideoDir, defaultVideoDir},
		{"paths.subtitle_dir", &c.Paths.SubtitleDir, defaultSubtitleDir},
		{"paths.output_dir", &c.Paths.OutputDir, defaultOutputDir},
		{"paths.font_dir", &c.Paths.FontDir, defaultFontDir},
		{"paths.frame_output_dir", &c.Paths.FrameOutputDir, defaultFrameOutputDir},
		{"paths.state_dir", &c.Paths.StateDir, defaultStateDir()},
	}
	for _, field := range fields {
		if strings.TrimSpace(*field.value) == "" {
			*field.value = field.fallback
		}
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

func (c *Config) normalizeBurn() {
	c.Burn.Extensions = normalizeExtensions(c.Burn.Extensions, DefaultBurnExtensions())
	c.Burn.HWAccel = strings.TrimSpace(c.Burn.HWAccel)
	if c.Burn.HWAccel == "" {
		c.Burn.HWAccel = defaultHWAccel
	}
	c.Burn.GPUEncoder = strings.TrimSpace(c.Burn.GPUEncoder)
	if c.Burn.GPUEncoder == "" {
		c.Burn.GPUEncoder = defaultGPUEncoder
	}
	c.Burn.GPUPreset = strings.TrimSpace(c.Burn.GPUPreset)
	if c.Burn.GPUPreset == "" {
		c.Burn.GPUPreset = defaultGPUPreset
	}
	c.Burn.CPUEncoder = strings.TrimSpace(c.Burn.CPUEncoder)
	if c.Burn.CPUEncoder == "" {
		c.Burn.CPUEncoder = defaultCPUEncoder
	}
	c.Burn.CPUPreset = strings.TrimSpace(c.Burn.CPUPreset)
	if c.Burn.CPUPreset == "" {
		c.Burn.CPUPreset = defaultCPUPreset
	}
	c.Burn.ProgressFPS = strings.ToLower(strings.TrimSpace(c.Burn.ProgressFPS))
	if c.Burn.ProgressFPS == "" {
		c.Burn.ProgressFPS = defaultProgressFPS
	}
	if c.Burn.AssumedFPS == 0 {
		c.Burn.AssumedFPS = defaultAssumedFPS
	}
}

func (c *Config) normalizeGrab() {
	c.Grab.Extensions = normalizeExtensions(c.Grab.Extensions, DefaultGrabExtensions())
	if c.Grab.Workers == 0 {
		c.Grab.Workers = runtime.NumCPU()
	}
	if c.Grab.Width == 0 {
		c.Grab.Width = defaultFrameWidth
	}
	if c.Grab.Height == 0 {
		c.Grab.Height = defaultFrameHeight
	}
	if c.Grab.JPEGQuality == 0 {
		c.Grab.JPEGQuality = defaultJPEGQuality
	}
	c.Grab.GPUDecoder = strings.TrimSpace(c.Grab.GPUDecoder)
	if c.Grab.GPUDecoder == "" {
		c.Grab.GPUDecoder = defaultGPUDecoder
	}
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpeg
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobe
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultBind
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = defaultMaxBodyBytes
	}
	origins := c.Server.AllowedOrigins[:0]
	for _, origin := range c.Server.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	c.Server.AllowedOrigins = origins
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = ""
		return nil
	}
	expanded, err := expandPath(strings.TrimSpace(c.History.Path))
	if err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	c.History.Path = expanded
	return nil
}

// normalizeExtensions lowercases entries and guarantees a leading dot.
// An empty list falls back to the provided defaults.
func normalizeExtensions(values []string, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		ext := strings.ToLower(strings.TrimSpace(value))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// NormalizeExtensions applies the config extension rules to caller-supplied values.
func NormalizeExtensions(values []string, fallback []string) []string {
	return normalizeExtensions(values, fallback)
}
