package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"vidbatch/internal/progress"
)

// barObserver draws one terminal progress bar per video.
type barObserver struct {
	w     io.Writer
	bar   *progressbar.ProgressBar
	total int
}

func newBarFactory(w io.Writer) progress.Factory {
	return func() progress.Observer { return &barObserver{w: w} }
}

func (o *barObserver) Begin(label string, total int) {
	o.total = total
	limit := int64(total)
	if limit <= 0 {
		limit = -1
	}
	o.bar = progressbar.NewOptions64(limit,
		progressbar.OptionSetWriter(o.w),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(o.w, "\n") }),
	)
}

// ObserveFrame keeps the bar within its estimated total; the frame counter
// itself may run past it.
func (o *barObserver) ObserveFrame(frame int) {
	if o.bar == nil {
		return
	}
	if o.total > 0 && frame > o.total {
		frame = o.total
	}
	_ = o.bar.Set(frame)
}

func (o *barObserver) End(err error) {
	if o.bar == nil {
		return
	}
	if err != nil {
		_ = o.bar.Exit()
		_, _ = io.WriteString(o.w, "\n")
		return
	}
	_ = o.bar.Finish()
}
