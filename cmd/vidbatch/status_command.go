package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidbatch/internal/deps"
)

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show configured folders and external tool availability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			if jsonOutput {
				return writeJSON(cmd, statuses)
			}

			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			config := ctx.configPath
			if config == "" {
				config = "(defaults)"
			}
			rows := [][]string{
				{"Config", config},
				{"Videos", cfg.Paths.VideoDir},
				{"Subtitles", cfg.Paths.SubtitleDir},
				{"Fonts", cfg.Paths.FontDir},
				{"Output", cfg.Paths.OutputDir},
				{"Frames", cfg.Paths.FrameOutputDir},
				{"History", historyLabel(cfg.History.Enabled, cfg.HistoryPath())},
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))

			depRows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				state := "available"
				color := ansiGreen
				if !s.Available {
					state = "missing"
					color = ansiRed
				}
				if colorize {
					state = color + state + ansiReset
				}
				detail := s.Path
				if detail == "" {
					detail = s.Detail
				}
				depRows = append(depRows, []string{s.Name, s.Command, state, detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Tool", "Command", "State", "Detail"}, depRows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print dependency status as JSON")
	return cmd
}

func historyLabel(enabled bool, path string) string {
	if !enabled {
		return "disabled"
	}
	return path
}
