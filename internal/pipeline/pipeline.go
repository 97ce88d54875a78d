package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vidbatch/internal/burn"
	"vidbatch/internal/config"
	"vidbatch/internal/fileutil"
	"vidbatch/internal/frames"
	"vidbatch/internal/history"
	"vidbatch/internal/logging"
	"vidbatch/internal/media/transcoder"
	"vidbatch/internal/metrics"
	"vidbatch/internal/progress"
	"vidbatch/internal/report"
	"vidbatch/internal/services"
)

// Result is what a run produced, including partial reports on failure.
type Result struct {
	RunID   string          `json:"run_id"`
	Kind    string          `json:"kind"`
	Reports []report.Report `json:"reports"`
}

// Runner executes burn and grab stages under one run id.
type Runner struct {
	cfg     *config.Config
	burn    *burn.Batch
	grab    *frames.Batch
	history *history.Store
	metrics *metrics.Recorder
	observe progress.Factory
	logger  *slog.Logger
	newID   func() string
}

// Option customizes a Runner.
type Option func(*Runner)

// WithHistory records every run in store.
func WithHistory(store *history.Store) Option {
	return func(r *Runner) { r.history = store }
}

// WithMetrics reports run and item outcomes to rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(r *Runner) { r.metrics = rec }
}

// WithObserver attaches an extra progress observer to every video.
func WithObserver(factory progress.Factory) Option {
	return func(r *Runner) { r.observe = factory }
}

// WithIDGenerator replaces the uuid run id source.
func WithIDGenerator(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// New wires burn and frame batches around tc.
func New(cfg *config.Config, tc transcoder.Transcoder, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:    cfg,
		burn:   burn.NewBatch(burn.NewBurner(tc, burn.EncodingFromConfig(cfg), logger), logger),
		grab:   frames.NewBatch(frames.NewExtractor(tc, frames.SettingsFromConfig(cfg), logger), logger),
		logger: logging.NewComponentLogger(logger, "pipeline"),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run validates req, takes the run lock and executes the selected stages:
// burn first, then grab reading from the burn output folder.
func (r *Runner) Run(ctx context.Context, req Request) (Result, error) {
	res := Result{RunID: r.newID(), Kind: req.Kind(), Reports: []report.Report{}}
	ctx = services.WithRunID(ctx, res.RunID)
	logger := logging.WithContext(ctx, r.logger)

	if err := req.Validate(); err != nil {
		return res, err
	}

	if dir := req.lockDir(); dir != "" {
		lock, err := fileutil.AcquireRunLock(dir)
		if err != nil {
			return res, err
		}
		defer func() {
			if relErr := lock.Release(); relErr != nil {
				logger.Warn("release run lock failed", logging.Error(relErr), logging.String(logging.FieldImpact, "stale lock file may remain"))
			}
		}()
	}

	started := time.Now()
	finish := r.metrics.RunStarted()
	r.beginHistory(ctx, logger, res, started)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_started"),
		logging.String("kind", res.Kind),
	)

	err := r.execute(ctx, req, &res)

	status := history.StatusSucceeded
	if err != nil {
		status = history.StatusFailed
	}
	finish(status)
	for _, rep := range res.Reports {
		r.metrics.ObserveReport(rep)
	}
	r.finishHistory(ctx, logger, res, status, err)

	if err != nil {
		logging.ErrorWithContext(logger, "run failed", "run_failed",
			logging.Failure(err, "inspect the per-video report for the failing item")...)
		return res, err
	}
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_completed"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return res, nil
}

func (r *Runner) execute(ctx context.Context, req Request, res *Result) error {
	observe := r.observers(ctx)
	if req.BurnSubtitles {
		rep, err := r.burn.Run(services.WithOperation(ctx, string(report.OperationBurn)), burn.Request{
			VideoDir:    req.VideoFolder,
			SubtitleDir: req.SubtitleFolder,
			OutputDir:   req.OutputFolder,
			FontDir:     req.FontFolder,
			Options: burn.Options{
				UseGPU:           req.UseGPU,
				StopOnError:      req.StopOnError,
				CheckSystemFonts: req.CheckSystemFonts,
			},
			Extensions: r.cfg.Burn.Extensions,
			Observe:    observe,
		})
		res.Reports = append(res.Reports, rep)
		if err != nil {
			return err
		}
	}
	if req.GrabFrames {
		rep, err := r.grab.Run(services.WithOperation(ctx, string(report.OperationGrab)), frames.Request{
			InputDir:          req.OutputFolder,
			OutputDir:         req.FrameOutputFolder,
			FrameInterval:     req.FrameInterval,
			UseGPU:            req.UseGPU,
			UseMultithreading: req.UseMultithreading,
			Workers:           r.cfg.Grab.Workers,
			Extensions:        r.cfg.Grab.Extensions,
			Observe:           observe,
		})
		res.Reports = append(res.Reports, rep)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) observers(ctx context.Context) progress.Factory {
	logFactory := progress.LogFactory(logging.WithContext(ctx, r.logger), 0)
	if r.observe == nil {
		return logFactory
	}
	return progress.Combine(logFactory, r.observe)
}

func (r *Runner) beginHistory(ctx context.Context, logger *slog.Logger, res Result, started time.Time) {
	if r.history == nil {
		return
	}
	if err := r.history.Begin(ctx, res.RunID, res.Kind, started); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will be missing from history"),
		)
	}
}

func (r *Runner) finishHistory(ctx context.Context, logger *slog.Logger, res Result, status string, runErr error) {
	if r.history == nil {
		return
	}
	// A cancelled run is still recorded.
	ctx = context.WithoutCancel(ctx)
	if err := r.history.Finish(ctx, res.RunID, status, runErr, time.Now(), res.Reports); err != nil {
		logging.WarnWithContext(logger, "history update failed", "history_finish_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run status in history may be stale"),
		)
	}
}
