package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vidbatch/internal/media/ffprobe"
)

// FakeTranscoder is an in-memory transcoder.Transcoder for worker tests.
//
// A successful Run creates the output the real tool would: the last argument
// for a burn, or FramesToWrite files for a "%04d" image pattern.
type FakeTranscoder struct {
	mu sync.Mutex

	Duration    float64
	DurationErr error
	Rate        ffprobe.Rational
	RateErr     error
	Frames      int
	FramesErr   error

	// Lines are fed to the diagnostic callback on every Run.
	Lines []string
	// ExitCodes maps an input file name to the exit code its run returns.
	ExitCodes map[string]int
	RunErr    error
	// SkipOutput suppresses output creation to simulate a silent failure.
	SkipOutput    bool
	FramesToWrite int

	Calls  [][]string
	Probes []string
}

// NewFakeTranscoder returns a fake reporting a 20 s, 30 fps, 600 frame input.
func NewFakeTranscoder() *FakeTranscoder {
	return &FakeTranscoder{
		Duration:      20,
		Rate:          ffprobe.Rational{Num: 30, Den: 1},
		Frames:        600,
		FramesToWrite: 3,
	}
}

func (f *FakeTranscoder) ProbeDuration(_ context.Context, path string) (float64, error) {
	f.recordProbe("duration:" + filepath.Base(path))
	return f.Duration, f.DurationErr
}

func (f *FakeTranscoder) ProbeFrameRate(_ context.Context, path string) (ffprobe.Rational, error) {
	f.recordProbe("rate:" + filepath.Base(path))
	return f.Rate, f.RateErr
}

func (f *FakeTranscoder) ProbeFrameCount(_ context.Context, path string) (int, error) {
	f.recordProbe("frames:" + filepath.Base(path))
	return f.Frames, f.FramesErr
}

func (f *FakeTranscoder) recordProbe(entry string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Probes = append(f.Probes, entry)
}

func (f *FakeTranscoder) Run(ctx context.Context, args []string, onLine func(string)) (int, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, append([]string(nil), args...))
	lines := append([]string(nil), f.Lines...)
	runErr := f.RunErr
	code := f.ExitCodes[filepath.Base(inputOf(args))]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return -1, err
	}
	if runErr != nil {
		return -1, runErr
	}
	for _, line := range lines {
		if onLine != nil {
			onLine(line)
		}
	}
	if code != 0 || f.SkipOutput || len(args) == 0 {
		return code, nil
	}
	return 0, f.produce(args)
}

func (f *FakeTranscoder) produce(args []string) error {
	for _, arg := range args {
		if strings.Contains(arg, "%04d") {
			for i := 1; i <= f.FramesToWrite; i++ {
				if err := os.WriteFile(fmt.Sprintf(arg, i), []byte("jpeg"), 0o644); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return os.WriteFile(args[len(args)-1], []byte("video"), 0o644)
}

// CallCount returns the number of Run invocations.
func (f *FakeTranscoder) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}

// LastCall returns the arguments of the most recent Run.
func (f *FakeTranscoder) LastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return nil
	}
	return f.Calls[len(f.Calls)-1]
}

func inputOf(args []string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-i" {
			return args[i+1]
		}
	}
	return ""
}
