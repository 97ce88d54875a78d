package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the default input, output, and state directories.
type Paths struct {
	VideoDir       string `toml:"video_dir" env:"VIDBATCH_VIDEO_DIR"`
	SubtitleDir    string `toml:"subtitle_dir" env:"VIDBATCH_SUBTITLE_DIR"`
	OutputDir      string `toml:"output_dir" env:"VIDBATCH_OUTPUT_DIR"`
	FontDir        string `toml:"font_dir" env:"VIDBATCH_FONT_DIR"`
	FrameOutputDir string `toml:"frame_output_dir" env:"VIDBATCH_FRAME_OUTPUT_DIR"`
	StateDir       string `toml:"state_dir" env:"VIDBATCH_STATE_DIR"`
}

// Burn contains subtitle burn-in defaults and encoder selection.
type Burn struct {
	UseGPU           bool     `toml:"use_gpu" env:"VIDBATCH_USE_GPU"`
	StopOnError      bool     `toml:"stop_on_error" env:"VIDBATCH_STOP_ON_ERROR"`
	CheckSystemFonts bool     `toml:"check_system_fonts" env:"VIDBATCH_CHECK_SYSTEM_FONTS"`
	Extensions       []string `toml:"extensions" env:"VIDBATCH_BURN_EXTENSIONS"`
	HWAccel          string   `toml:"hwaccel"`
	GPUEncoder       string   `toml:"gpu_encoder"`
	GPUPreset        string   `toml:"gpu_preset"`
	CPUEncoder       string   `toml:"cpu_encoder"`
	CPUPreset        string   `toml:"cpu_preset"`
	// ProgressFPS selects how the expected frame total is estimated:
	// "assumed" multiplies the duration by AssumedFPS, "probed" uses the
	// source frame rate.
	ProgressFPS string  `toml:"progress_fps"`
	AssumedFPS  float64 `toml:"assumed_fps"`
}

// Grab contains frame extraction defaults.
type Grab struct {
	FrameInterval     int      `toml:"frame_interval" env:"VIDBATCH_FRAME_INTERVAL"`
	UseMultithreading bool     `toml:"use_multithreading" env:"VIDBATCH_USE_MULTITHREADING"`
	Workers           int      `toml:"workers" env:"VIDBATCH_WORKERS"`
	Extensions        []string `toml:"extensions" env:"VIDBATCH_GRAB_EXTENSIONS"`
	Width             int      `toml:"width"`
	Height            int      `toml:"height"`
	JPEGQuality       int      `toml:"jpeg_quality"`
	GPUDecoder        string   `toml:"gpu_decoder"`
}

// Tools contains the external binaries and their process limits.
type Tools struct {
	FFmpeg         string `toml:"ffmpeg" env:"VIDBATCH_FFMPEG"`
	FFprobe        string `toml:"ffprobe" env:"VIDBATCH_FFPROBE"`
	TimeoutSeconds int    `toml:"timeout_seconds" env:"VIDBATCH_TIMEOUT_SECONDS"`
}

// Server contains the local HTTP API settings.
type Server struct {
	Bind           string   `toml:"bind" env:"VIDBATCH_BIND"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" env:"VIDBATCH_LOG_FORMAT"`
	Level  string `toml:"level" env:"VIDBATCH_LOG_LEVEL"`
}

// History controls the SQLite run history.
type History struct {
	Enabled bool   `toml:"enabled" env:"VIDBATCH_HISTORY"`
	Path    string `toml:"path"`
}

// Config encapsulates all configuration values for vidbatch.
//
// Configuration sections by subsystem:
//   - Paths: default folders for videos, subtitles, fonts, outputs, and state
//   - Burn: subtitle burn-in options and encoder selection
//   - Grab: frame extraction options
//   - Tools: ffmpeg/ffprobe binaries and process timeout
//   - Server: local HTTP API bind address and CORS
//   - Logging: log format and level
//   - History: SQLite run history
type Config struct {
	Paths   Paths   `toml:"paths"`
	Burn    Burn    `toml:"burn"`
	Grab    Grab    `toml:"grab"`
	Tools   Tools   `toml:"tools"`
	Server  Server  `toml:"server"`
	Logging Logging `toml:"logging"`
	History History `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vidbatch/config.toml")
}

// Load locates, parses, and validates a configuration file. VIDBATCH_*
// environment variables override file values. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, "", false, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("vidbatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory used for history and locks.
// Input folders are never created here; a missing input folder is reported
// by the batch that needs it.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.StateDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.StateDir, err)
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFmpeg); bin != "" {
		return bin
	}
	return defaultFFmpeg
}

// FFprobeBinary returns the ffprobe executable name used for media probing.
func (c *Config) FFprobeBinary() string {
	if bin := strings.TrimSpace(c.Tools.FFprobe); bin != "" {
		return bin
	}
	return defaultFFprobe
}

// HistoryPath returns the SQLite history database location.
func (c *Config) HistoryPath() string {
	if p := strings.TrimSpace(c.History.Path); p != "" {
		return p
	}
	return filepath.Join(c.Paths.StateDir, "history.db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "vidbatch")
	}
	return defaultStateDirFallback
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// Encode renders the effective configuration as TOML.
func (c *Config) Encode() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}
