package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"vidbatch/internal/api"
	"vidbatch/internal/config"
	"vidbatch/internal/deps"
	"vidbatch/internal/logging"
	"vidbatch/internal/metrics"
	"vidbatch/internal/pipeline"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API used by the web GUI",
		Long: "Listens on server.bind and accepts POST /run with the same options as the run\n" +
			"command. Also serves /api/status, /api/runs and /metrics.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("bind") {
				cfg.Server.Bind = strings.TrimSpace(bind)
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			if missing := deps.MissingRequired(deps.CheckBinaries(deps.Requirements(cfg))); len(missing) > 0 {
				logging.WarnWithContext(logger, "required binaries not found", "dependency_missing",
					logging.String("missing", strings.Join(missing, ", ")),
					logging.String(logging.FieldErrorHint, "install ffmpeg or set tools.ffmpeg / tools.ffprobe"),
					logging.String(logging.FieldImpact, "runs will fail until the binaries are available"),
				)
			}

			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			rec := metrics.New()
			pipeOpts := []pipeline.Option{pipeline.WithMetrics(rec)}
			apiOpts := []api.Option{api.WithMetrics(rec.Handler()), api.WithVersion(version)}
			if store != nil {
				defer store.Close()
				pipeOpts = append(pipeOpts, pipeline.WithHistory(store))
				apiOpts = append(apiOpts, api.WithHistory(store))
			}

			runner := pipeline.New(cfg, newTranscoder(cfg), logger, pipeOpts...)
			srv := api.NewServer(cfg, runner, logger, apiOpts...)
			if err := srv.Start(cmd.Context()); err != nil {
				return err
			}
			defer srv.Stop()
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on http://%s\n", srv.Addr())

			<-cmd.Context().Done()
			logger.Info("shutting down", logging.String(logging.FieldEventType, "api_shutdown"))
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", config.Default().Server.Bind, "Listen address (default server.bind)")
	return cmd
}
