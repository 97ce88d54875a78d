package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vidbatch/internal/config"
	"vidbatch/internal/fonts"
	"vidbatch/internal/services"
)

func newFontsCommand(ctx *commandContext) *cobra.Command {
	fontsCmd := &cobra.Command{
		Use:   "fonts",
		Short: "Inspect font folders and subtitle font coverage",
	}
	fontsCmd.AddCommand(newFontsListCommand(ctx))
	fontsCmd.AddCommand(newFontsCheckCommand(ctx))
	return fontsCmd
}

func resolveFontDir(ctx *commandContext, flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return config.ExpandPath(flagValue)
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return "", err
	}
	return cfg.Paths.FontDir, nil
}

func newFontsListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "list [font-dir]",
		Short: "Show the family name declared by each font file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg string
			if len(args) == 1 {
				arg = args[0]
			}
			dir, err := resolveFontDir(ctx, arg)
			if err != nil {
				return err
			}
			families, err := fonts.ListFamilies(dir)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, families)
			}
			out := cmd.OutOrStdout()
			if len(families) == 0 {
				fmt.Fprintf(out, "No .ttf or .otf files in %s\n", dir)
				return nil
			}
			rows := make([][]string, 0, len(families))
			for _, fam := range families {
				name := fam.Name
				if !fam.Resolved {
					name = "(unresolved)"
				}
				rows = append(rows, []string{filepath.Base(fam.Path), name})
			}
			fmt.Fprintln(out, renderTable([]string{"File", "Family"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print families as JSON")
	return cmd
}

func newFontsCheckCommand(ctx *commandContext) *cobra.Command {
	var fontDir string
	cmd := &cobra.Command{
		Use:   "check <subtitle>",
		Short: "Report style fonts a subtitle needs that the font folder lacks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveFontDir(ctx, fontDir)
			if err != nil {
				return err
			}
			subtitle, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			cov, err := fonts.Check(subtitle, dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(cov.Required) == 0 {
				fmt.Fprintln(out, "Subtitle declares no styles")
				return nil
			}
			missing := make(map[string]bool, len(cov.Missing))
			for _, name := range cov.Missing {
				missing[name] = true
			}
			rows := make([][]string, 0, len(cov.Required))
			for _, name := range cov.Required {
				rows = append(rows, []string{name, yesNo(!missing[name])})
			}
			fmt.Fprintln(out, renderTable([]string{"Style font", "Available"}, rows, nil))
			if !cov.Complete() {
				return services.NewMissingFontsError(filepath.Base(subtitle), cov.Missing)
			}
			fmt.Fprintln(out, "All style fonts are available")
			return nil
		},
	}
	cmd.Flags().StringVar(&fontDir, "font-dir", "", "Folder of .ttf/.otf fonts (default paths.font_dir)")
	return cmd
}
