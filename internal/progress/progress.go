package progress

import (
	"regexp"
	"strconv"
	"sync"
)

// Observer receives per-video progress from a transcode.
type Observer interface {
	// Begin starts tracking label with an estimated total. A total of zero
	// means the total is unknown.
	Begin(label string, total int)
	// ObserveFrame reports the latest frame counter. Values only increase.
	ObserveFrame(frame int)
	// End finishes tracking; err is nil on success.
	End(err error)
}

// Factory builds one Observer per video so concurrent workers never share state.
type Factory func() Observer

// Nop discards all progress.
type Nop struct{}

func (Nop) Begin(string, int) {}
func (Nop) ObserveFrame(int) {}
func (Nop) End(error) {}

// NopFactory returns Nop observers.
func NopFactory() Observer { return Nop{} }

// Multi fans events out to every observer in order.
func Multi(observers ...Observer) Observer {
	filtered := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return multi(filtered)
}

type multi []Observer

func (m multi) Begin(label string, total int) {
	for _, o := range m {
		o.Begin(label, total)
	}
}

func (m multi) ObserveFrame(frame int) {
	for _, o := range m {
		o.ObserveFrame(frame)
	}
}

func (m multi) End(err error) {
	for _, o := range m {
		o.End(err)
	}
}

// Combine builds a Factory whose observers fan out to one observer from each factory.
func Combine(factories ...Factory) Factory {
	return func() Observer {
		observers := make([]Observer, 0, len(factories))
		for _, f := range factories {
			if f != nil {
				observers = append(observers, f())
			}
		}
		if len(observers) == 0 {
			return Nop{}
		}
		return Multi(observers...)
	}
}

var framePattern = regexp.MustCompile(`frame=\s*(\d+)`)

// ParseFrame extracts the frame counter from an ffmpeg status line.
func ParseFrame(line string) (int, bool) {
	match := framePattern.FindStringSubmatch(line)
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FrameTracker turns diagnostic lines into ObserveFrame calls. The counter
// never moves backwards and is not clamped at the expected total.
type FrameTracker struct {
	mu       sync.Mutex
	observer Observer
	current  int
}

// NewFrameTracker forwards frame advances to observer (Nop when nil).
func NewFrameTracker(observer Observer) *FrameTracker {
	if observer == nil {
		observer = Nop{}
	}
	return &FrameTracker{observer: observer}
}

// HandleLine consumes one diagnostic line. It reports whether the counter advanced.
func (t *FrameTracker) HandleLine(line string) bool {
	frame, ok := ParseFrame(line)
	if !ok {
		return false
	}
	t.mu.Lock()
	if frame <= t.current {
		t.mu.Unlock()
		return false
	}
	t.current = frame
	t.mu.Unlock()
	t.observer.ObserveFrame(frame)
	return true
}

// Current returns the highest frame seen.
func (t *FrameTracker) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}
