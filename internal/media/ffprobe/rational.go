package ffprobe

import (
	"fmt"
	"strconv"
	"strings"
)

// Rational is a frame rate expressed the way ffprobe reports it, e.g. 30000/1001.
type Rational struct {
	Num int64
	Den int64
}

// ParseRational parses "num/den" or a bare integer.
func ParseRational(output string) (Rational, error) {
	value := firstField(output)
	if value == "" {
		return Rational{}, fmt.Errorf("ffprobe: frame rate unavailable")
	}
	numText, denText, found := strings.Cut(value, "/")
	if !found {
		denText = "1"
	}
	num, err := strconv.ParseInt(strings.TrimSpace(numText), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("ffprobe: parse frame rate %q: %w", value, err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(denText), 10, 64)
	if err != nil {
		return Rational{}, fmt.Errorf("ffprobe: parse frame rate %q: %w", value, err)
	}
	if num <= 0 || den <= 0 {
		return Rational{}, fmt.Errorf("ffprobe: invalid frame rate %q", value)
	}
	return Rational{Num: num, Den: den}, nil
}

// Float returns the rate in frames per second.
func (r Rational) Float() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}
