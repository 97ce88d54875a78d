package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidbatch/internal/config"
	"vidbatch/internal/pipeline"
)

// stageFlags holds the per-run overrides shared by burn, grab and run.
// A flag only replaces the configured value when it was set explicitly.
type stageFlags struct {
	videoDir       string
	subtitleDir    string
	outputDir      string
	inputDir       string
	fontDir        string
	frameDir       string
	frameInterval  int
	useGPU         bool
	stopOnError    bool
	systemFonts    bool
	multithreading bool
	workers        int
	jsonOutput     bool
}

func (f *stageFlags) registerBurn(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.videoDir, "video-dir", "", "Folder of source videos (default paths.video_dir)")
	flags.StringVar(&f.subtitleDir, "subtitle-dir", "", "Folder of .ass/.srt subtitles (default paths.subtitle_dir)")
	flags.StringVar(&f.fontDir, "font-dir", "", "Folder of .ttf/.otf fonts (default paths.font_dir)")
	flags.BoolVar(&f.stopOnError, "stop-on-error", false, "Abort the batch on the first failed video")
	flags.BoolVar(&f.systemFonts, "system-fonts", false, "Use system fonts and skip the font coverage check")
}

func (f *stageFlags) registerGrab(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.frameDir, "frame-dir", "", "Folder receiving per-video frame folders (default paths.frame_output_dir)")
	flags.IntVar(&f.frameInterval, "interval", 0, "Keep one frame out of every N (default grab.frame_interval)")
	flags.BoolVar(&f.multithreading, "parallel", false, "Extract several videos concurrently (default grab.use_multithreading)")
	flags.IntVar(&f.workers, "workers", 0, "Concurrent extractions when --parallel is set (default grab.workers)")
}

func (f *stageFlags) registerCommon(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.BoolVar(&f.useGPU, "gpu", false, "Use CUDA decode and NVENC encode (default burn.use_gpu)")
	flags.BoolVar(&f.jsonOutput, "json", false, "Print the run result as JSON")
}

// apply copies explicitly set flags onto req and the worker count onto cfg.
func (f *stageFlags) apply(cmd *cobra.Command, cfg *config.Config, req *pipeline.Request) error {
	changed := cmd.Flags().Changed
	setDir := func(flag, value string, dst *string) error {
		if !changed(flag) {
			return nil
		}
		expanded, err := config.ExpandPath(value)
		if err != nil {
			return fmt.Errorf("--%s: %w", flag, err)
		}
		*dst = expanded
		return nil
	}
	for _, d := range []struct {
		flag  string
		value string
		dst   *string
	}{
		{"video-dir", f.videoDir, &req.VideoFolder},
		{"subtitle-dir", f.subtitleDir, &req.SubtitleFolder},
		{"output-dir", f.outputDir, &req.OutputFolder},
		{"input-dir", f.inputDir, &req.OutputFolder},
		{"font-dir", f.fontDir, &req.FontFolder},
		{"frame-dir", f.frameDir, &req.FrameOutputFolder},
	} {
		if err := setDir(d.flag, d.value, d.dst); err != nil {
			return err
		}
	}
	if changed("interval") {
		req.FrameInterval = f.frameInterval
	}
	if changed("gpu") {
		req.UseGPU = f.useGPU
	}
	if changed("stop-on-error") {
		req.StopOnError = f.stopOnError
	}
	if changed("system-fonts") {
		req.CheckSystemFonts = f.systemFonts
	}
	if changed("parallel") {
		req.UseMultithreading = f.multithreading
	}
	if changed("workers") {
		if f.workers < 1 {
			return fmt.Errorf("--workers must be at least 1, got %d", f.workers)
		}
		cfg.Grab.Workers = f.workers
	}
	return nil
}

func newBurnCommand(ctx *commandContext) *cobra.Command {
	var flags stageFlags
	cmd := &cobra.Command{
		Use:   "burn",
		Short: "Burn matching subtitles into every video of a folder",
		Long: "Pairs each video with {name}.ass or {name}.srt from the subtitle folder and writes\n" +
			"{name}_subtitled.mp4 to the output folder. Videos without a subtitle are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, &flags, func(req *pipeline.Request) {
				req.BurnSubtitles = true
				req.GrabFrames = false
			})
		},
	}
	flags.registerBurn(cmd)
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Folder receiving burned videos (default paths.output_dir)")
	flags.registerCommon(cmd)
	return cmd
}

func newGrabCommand(ctx *commandContext) *cobra.Command {
	var flags stageFlags
	cmd := &cobra.Command{
		Use:   "grab",
		Short: "Extract still frames from every video of a folder",
		Long: "Samples one frame out of every --interval frames into {frame-dir}/{name}/ as\n" +
			"{name}_{index}_of_{total}.jpg. Videos are read from the output folder unless\n" +
			"--input-dir is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, &flags, func(req *pipeline.Request) {
				req.BurnSubtitles = false
				req.GrabFrames = true
			})
		},
	}
	cmd.Flags().StringVar(&flags.inputDir, "input-dir", "", "Folder of videos to sample (default paths.output_dir)")
	flags.registerGrab(cmd)
	flags.registerCommon(cmd)
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		flags  stageFlags
		noBurn bool
		noGrab bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Burn subtitles, then extract frames from the burned videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.runPipeline(cmd, &flags, func(req *pipeline.Request) {
				req.BurnSubtitles = !noBurn
				req.GrabFrames = !noGrab
			})
		},
	}
	flags.registerBurn(cmd)
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Folder receiving burned videos and read for frames (default paths.output_dir)")
	flags.registerGrab(cmd)
	flags.registerCommon(cmd)
	cmd.Flags().BoolVar(&noBurn, "no-burn", false, "Skip the subtitle burn stage")
	cmd.Flags().BoolVar(&noGrab, "no-grab", false, "Skip the frame extraction stage")
	return cmd
}

// runPipeline executes one pipeline run for a processing command and prints
// its reports, even when the run fails part way.
func (c *commandContext) runPipeline(cmd *cobra.Command, flags *stageFlags, stages func(*pipeline.Request)) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.logger(cmd)
	if err != nil {
		return err
	}

	req := pipeline.DefaultRequest(cfg)
	stages(&req)
	if err := flags.apply(cmd, cfg, &req); err != nil {
		return err
	}

	store, err := c.openHistory()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	var opts []pipeline.Option
	if store != nil {
		opts = append(opts, pipeline.WithHistory(store))
	}
	// Concurrent extractions would draw over each other's bars.
	sequential := !req.GrabFrames || !req.UseMultithreading || cfg.Grab.Workers == 1
	if !flags.jsonOutput && sequential && isTerminal(cmd.ErrOrStderr()) {
		opts = append(opts, pipeline.WithObserver(newBarFactory(cmd.ErrOrStderr())))
	}

	runner := pipeline.New(cfg, newTranscoder(cfg), logger, opts...)
	res, runErr := runner.Run(cmd.Context(), req)

	if flags.jsonOutput {
		if err := writeJSON(cmd, res); err != nil {
			return err
		}
		return runErr
	}
	out := cmd.OutOrStdout()
	for _, rep := range res.Reports {
		fmt.Fprint(out, renderReport(rep))
	}
	if res.RunID != "" && runErr == nil {
		fmt.Fprintf(out, "Run %s completed\n", res.RunID)
	}
	return runErr
}
