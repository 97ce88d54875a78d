package config

import "runtime"

const (
	defaultVideoDir         = "data/input/"
	defaultSubtitleDir      = "data/subtitles/"
	defaultOutputDir        = "data/output/"
	defaultFontDir          = "assets/fonts/"
	defaultFrameOutputDir   = "data/output/frames/"
	defaultStateDirFallback = "~/.local/state/vidbatch"
	defaultFFmpeg           = "ffmpeg"
	defaultFFprobe          = "ffprobe"
	defaultHWAccel          = "cuda"
	defaultGPUEncoder       = "h264_nvenc"
	defaultGPUPreset        = "p4"
	defaultCPUEncoder       = "libx264"
	defaultCPUPreset        = "medium"
	defaultGPUDecoder       = "h264_cuvid"
	defaultProgressFPS      = ProgressFPSAssumed
	defaultAssumedFPS       = 30
	defaultFrameInterval    = 5
	defaultFrameWidth       = 1920
	defaultFrameHeight      = 1080
	defaultJPEGQuality      = 2
	defaultBind             = "127.0.0.1:5000"
	defaultMaxBodyBytes     = 1 << 20
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
)

// Progress total estimation modes for subtitle burns.
const (
	ProgressFPSAssumed = "assumed"
	ProgressFPSProbed  = "probed"
)

// DefaultBurnExtensions is the eligible video set for subtitle burning.
func DefaultBurnExtensions() []string {
	return []string{".mp4", ".mkv", ".avi", ".mov", ".flv", ".wmv"}
}

// DefaultGrabExtensions is the eligible video set for frame extraction.
func DefaultGrabExtensions() []string {
	return []string{".mp4", ".avi", ".mov", ".mkv"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VideoDir:       defaultVideoDir,
			SubtitleDir:    defaultSubtitleDir,
			OutputDir:      defaultOutputDir,
			FontDir:        defaultFontDir,
			FrameOutputDir: defaultFrameOutputDir,
			StateDir:       defaultStateDir(),
		},
		Burn: Burn{
			UseGPU:      true,
			Extensions:  DefaultBurnExtensions(),
			HWAccel:     defaultHWAccel,
			GPUEncoder:  defaultGPUEncoder,
			GPUPreset:   defaultGPUPreset,
			CPUEncoder:  defaultCPUEncoder,
			CPUPreset:   defaultCPUPreset,
			ProgressFPS: defaultProgressFPS,
			AssumedFPS:  defaultAssumedFPS,
		},
		Grab: Grab{
			FrameInterval:     defaultFrameInterval,
			UseMultithreading: true,
			Workers:           runtime.NumCPU(),
			Extensions:        DefaultGrabExtensions(),
			Width:             defaultFrameWidth,
			Height:            defaultFrameHeight,
			JPEGQuality:       defaultJPEGQuality,
			GPUDecoder:        defaultGPUDecoder,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpeg,
			FFprobe: defaultFFprobe,
		},
		Server: Server{
			Bind:           defaultBind,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   defaultMaxBodyBytes,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
	}
}
