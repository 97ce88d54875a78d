package pipeline

import (
	"fmt"
	"strings"

	"vidbatch/internal/config"
	"vidbatch/internal/services"
)

// Request selects the stages of a run and their folders and options. Field
// names match the JSON body accepted by POST /run.
type Request struct {
	BurnSubtitles     bool   `json:"burn_subtitles"`
	GrabFrames        bool   `json:"grab_frames"`
	VideoFolder       string `json:"video_folder"`
	SubtitleFolder    string `json:"subtitle_folder"`
	OutputFolder      string `json:"output_folder"`
	FontFolder        string `json:"font_folder"`
	FrameOutputFolder string `json:"frame_output_folder"`
	FrameInterval     int    `json:"frame_interval"`
	UseGPU            bool   `json:"use_gpu"`
	StopOnError       bool   `json:"stop_on_error"`
	CheckSystemFonts  bool   `json:"check_system_fonts"`
	UseMultithreading bool   `json:"use_multithreading"`
}

// DefaultRequest returns the request used when a caller omits fields:
// grab only, with folders and options taken from cfg.
func DefaultRequest(cfg *config.Config) Request {
	return Request{
		BurnSubtitles:     false,
		GrabFrames:        true,
		VideoFolder:       cfg.Paths.VideoDir,
		SubtitleFolder:    cfg.Paths.SubtitleDir,
		OutputFolder:      cfg.Paths.OutputDir,
		FontFolder:        cfg.Paths.FontDir,
		FrameOutputFolder: cfg.Paths.FrameOutputDir,
		FrameInterval:     cfg.Grab.FrameInterval,
		UseGPU:            cfg.Burn.UseGPU,
		StopOnError:       cfg.Burn.StopOnError,
		CheckSystemFonts:  cfg.Burn.CheckSystemFonts,
		UseMultithreading: cfg.Grab.UseMultithreading,
	}
}

// Kind names the run for history and metrics.
func (r Request) Kind() string {
	switch {
	case r.BurnSubtitles && r.GrabFrames:
		return "pipeline"
	case r.BurnSubtitles:
		return "burn"
	case r.GrabFrames:
		return "grab"
	default:
		return "noop"
	}
}

// Validate checks the fields the selected stages depend on.
func (r Request) Validate() error {
	var problems []string
	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, name+" is required")
		}
	}
	if r.BurnSubtitles {
		require("video_folder", r.VideoFolder)
		require("subtitle_folder", r.SubtitleFolder)
		require("output_folder", r.OutputFolder)
		if !r.CheckSystemFonts {
			require("font_folder", r.FontFolder)
		}
	}
	if r.GrabFrames {
		require("output_folder", r.OutputFolder)
		require("frame_output_folder", r.FrameOutputFolder)
		if r.FrameInterval < 1 {
			problems = append(problems, fmt.Sprintf("frame_interval must be at least 1, got %d", r.FrameInterval))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "pipeline", "validate request", strings.Join(dedupe(problems), "; "), nil)
}

// lockDir is the folder the run writes into first.
func (r Request) lockDir() string {
	switch {
	case r.BurnSubtitles:
		return r.OutputFolder
	case r.GrabFrames:
		return r.FrameOutputFolder
	default:
		return ""
	}
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
