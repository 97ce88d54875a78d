package progress

import (
	"log/slog"
	"time"

	"vidbatch/internal/logging"
)

// LogObserver writes sampled progress lines to a logger.
type LogObserver struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	label   string
	total   int
	frame   int
	started time.Time
}

// NewLogObserver logs progress every bucketPercent percent.
func NewLogObserver(logger *slog.Logger, bucketPercent float64) *LogObserver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogObserver{logger: logger, sampler: logging.NewProgressSampler(bucketPercent)}
}

// LogFactory returns a Factory producing LogObservers on logger.
func LogFactory(logger *slog.Logger, bucketPercent float64) Factory {
	return func() Observer { return NewLogObserver(logger, bucketPercent) }
}

func (o *LogObserver) Begin(label string, total int) {
	o.label = label
	o.total = total
	o.frame = 0
	o.started = time.Now()
	o.sampler.Reset()
	o.sampler.ShouldLog(0, label)
	o.logger.Debug("progress started",
		logging.String(logging.FieldVideo, label),
		logging.Int(logging.FieldFrameTotal, total),
	)
}

func (o *LogObserver) ObserveFrame(frame int) {
	o.frame = frame
	if o.total <= 0 {
		return
	}
	percent := float64(frame) / float64(o.total) * 100
	if !o.sampler.ShouldLog(percent, o.label) {
		return
	}
	o.logger.Info("progress",
		logging.String(logging.FieldVideo, o.label),
		logging.Int(logging.FieldFrame, frame),
		logging.Int(logging.FieldFrameTotal, o.total),
		logging.Float64(logging.FieldPercent, min(percent, 100)),
	)
}

func (o *LogObserver) End(err error) {
	if err != nil {
		return
	}
	o.logger.Debug("progress finished",
		logging.String(logging.FieldVideo, o.label),
		logging.Int(logging.FieldFrame, o.frame),
		logging.Duration("elapsed", time.Since(o.started)),
	)
}
