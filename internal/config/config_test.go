package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidbatch/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "state", "vidbatch")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	for name, dir := range map[string]string{
		"video":    cfg.Paths.VideoDir,
		"subtitle": cfg.Paths.SubtitleDir,
		"output":   cfg.Paths.OutputDir,
		"font":     cfg.Paths.FontDir,
		"frames":   cfg.Paths.FrameOutputDir,
	} {
		if !filepath.IsAbs(dir) {
			t.Fatalf("expected %s dir to be absolute, got %q", name, dir)
		}
	}
	if !strings.HasSuffix(filepath.ToSlash(cfg.Paths.FrameOutputDir), "data/output/frames") {
		t.Fatalf("unexpected frame output dir: %q", cfg.Paths.FrameOutputDir)
	}
	if !cfg.Burn.UseGPU || cfg.Burn.StopOnError || cfg.Burn.CheckSystemFonts {
		t.Fatalf("unexpected burn defaults: %+v", cfg.Burn)
	}
	if cfg.Grab.FrameInterval != 5 || !cfg.Grab.UseMultithreading {
		t.Fatalf("unexpected grab defaults: %+v", cfg.Grab)
	}
	if cfg.Grab.Workers != runtime.NumCPU() {
		t.Fatalf("expected workers to default to NumCPU, got %d", cfg.Grab.Workers)
	}
	if cfg.Burn.ProgressFPS != config.ProgressFPSAssumed || cfg.Burn.AssumedFPS != 30 {
		t.Fatalf("unexpected progress defaults: %q %v", cfg.Burn.ProgressFPS, cfg.Burn.AssumedFPS)
	}
	if got := strings.Join(cfg.Burn.Extensions, ","); got != ".mp4,.mkv,.avi,.mov,.flv,.wmv" {
		t.Fatalf("unexpected burn extensions: %s", got)
	}
	if got := strings.Join(cfg.Grab.Extensions, ","); got != ".mp4,.avi,.mov,.mkv" {
		t.Fatalf("unexpected grab extensions: %s", got)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	info, err := os.Stat(cfg.Paths.StateDir)
	if err != nil {
		t.Fatalf("expected state dir to exist: %v", err)
	}
	if !info.IsDir() {
		t.Fatalf("expected %q to be directory", cfg.Paths.StateDir)
	}
}

func TestLoadCustomPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "vidbatch.toml")

	type payload struct {
		Paths struct {
			VideoDir string `toml:"video_dir"`
		} `toml:"paths"`
		Burn struct {
			UseGPU     bool     `toml:"use_gpu"`
			Extensions []string `toml:"extensions"`
		} `toml:"burn"`
		Grab struct {
			FrameInterval int `toml:"frame_interval"`
			Workers       int `toml:"workers"`
		} `toml:"grab"`
	}
	custom := payload{}
	custom.Paths.VideoDir = filepath.Join(tempDir, "videos")
	custom.Burn.UseGPU = false
	custom.Burn.Extensions = []string{"MP4", ".webm", "mp4"}
	custom.Grab.FrameInterval = 12
	custom.Grab.Workers = 3
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.VideoDir != filepath.Join(tempDir, "videos") {
		t.Fatalf("expected video dir from file, got %q", cfg.Paths.VideoDir)
	}
	if cfg.Burn.UseGPU {
		t.Fatal("expected use_gpu false from file")
	}
	if got := strings.Join(cfg.Burn.Extensions, ","); got != ".mp4,.webm" {
		t.Fatalf("expected normalized extensions, got %s", got)
	}
	if cfg.Grab.FrameInterval != 12 || cfg.Grab.Workers != 3 {
		t.Fatalf("unexpected grab settings: %+v", cfg.Grab)
	}
}

func TestEnvVarOverridesConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "vidbatch.toml")

	type payload struct {
		Grab struct {
			FrameInterval int `toml:"frame_interval"`
		} `toml:"grab"`
		Tools struct {
			FFmpeg string `toml:"ffmpeg"`
		} `toml:"tools"`
		Logging struct {
			Level string `toml:"level"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Grab.FrameInterval = 10
	custom.Tools.FFmpeg = "/opt/file/ffmpeg"
	custom.Logging.Level = "warn"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("VIDBATCH_FRAME_INTERVAL", "2")
	t.Setenv("VIDBATCH_FFMPEG", "/opt/env/ffmpeg")
	t.Setenv("VIDBATCH_LOG_LEVEL", "DEBUG")
	t.Setenv("VIDBATCH_USE_GPU", "false")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Grab.FrameInterval != 2 {
		t.Errorf("expected frame interval from env, got %d", cfg.Grab.FrameInterval)
	}
	if cfg.FFmpegBinary() != "/opt/env/ffmpeg" {
		t.Errorf("expected ffmpeg from env, got %q", cfg.FFmpegBinary())
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected normalized log level from env, got %q", cfg.Logging.Level)
	}
	if cfg.Burn.UseGPU {
		t.Error("expected use_gpu disabled by env")
	}
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("VIDBATCH_FRAME_INTERVAL", "often")
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for non-numeric frame interval")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[burn]") {
		t.Fatalf("sample config missing burn section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Grab.FrameInterval != 5 {
		t.Fatalf("expected sample frame interval 5, got %d", cfg.Grab.FrameInterval)
	}
	if cfg.Paths.VideoDir != "data/input/" {
		t.Fatalf("unexpected sample video dir: %q", cfg.Paths.VideoDir)
	}
}

func TestEncodeRoundTripsEffectiveConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Grab.FrameInterval = 7
	text, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(text, "frame_interval = 7") {
		t.Fatalf("expected encoded frame interval, got:\n%s", text)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero interval", func(c *config.Config) { c.Grab.FrameInterval = 0 }},
		{"negative workers", func(c *config.Config) { c.Grab.Workers = -1 }},
		{"unknown progress mode", func(c *config.Config) { c.Burn.ProgressFPS = "guess" }},
		{"zero assumed fps", func(c *config.Config) { c.Burn.AssumedFPS = 0 }},
		{"negative timeout", func(c *config.Config) { c.Tools.TimeoutSeconds = -5 }},
		{"bad bind", func(c *config.Config) { c.Server.Bind = "localhost" }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "chatty" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestNormalizeExtensionsFallsBack(t *testing.T) {
	got := config.NormalizeExtensions([]string{" ", ""}, config.DefaultGrabExtensions())
	if strings.Join(got, ",") != ".mp4,.avi,.mov,.mkv" {
		t.Fatalf("expected fallback extensions, got %v", got)
	}
	got = config.NormalizeExtensions([]string{"MOV"}, nil)
	if len(got) != 1 || got[0] != ".mov" {
		t.Fatalf("expected .mov, got %v", got)
	}
}
