package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrAssetNotFound     = errors.New("asset not found")
	ErrMissingFonts      = errors.New("missing fonts")
	ErrUnsupportedFormat = errors.New("unsupported subtitle format")
	ErrProbeFailed       = errors.New("probe failed")
	ErrTranscodeFailed   = errors.New("transcode failed")
	ErrOutputMissing     = errors.New("output missing")
	ErrNoEligibleVideos  = errors.New("no eligible videos")
	ErrFontCheck         = errors.New("font check failed")
	ErrValidation        = errors.New("validation error")
	ErrLocked            = errors.New("output directory locked")
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// MissingFontsError reports style fonts a subtitle needs that the font
// directory does not provide.
type MissingFontsError struct {
	Subtitle string
	Names    []string
}

// NewMissingFontsError copies and sorts names.
func NewMissingFontsError(subtitle string, names []string) *MissingFontsError {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return &MissingFontsError{Subtitle: subtitle, Names: sorted}
}

func (e *MissingFontsError) Error() string {
	return fmt.Sprintf("%s: %s requires fonts not found in the font directory: %s",
		ErrMissingFonts, e.Subtitle, strings.Join(e.Names, ", "))
}

func (e *MissingFontsError) Unwrap() error { return ErrMissingFonts }

// TranscodeError reports a transcoder process that exited non-zero.
type TranscodeError struct {
	Operation string
	Input     string
	ExitCode  int
}

func (e *TranscodeError) Error() string {
	op := strings.TrimSpace(e.Operation)
	if op == "" {
		op = "transcode"
	}
	return fmt.Sprintf("%s: %s %s: exit code %d", ErrTranscodeFailed, op, e.Input, e.ExitCode)
}

func (e *TranscodeError) Unwrap() error { return ErrTranscodeFailed }

// Kind returns a short label for the marker carried by err, suitable for
// reports and metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAssetNotFound):
		return "asset_not_found"
	case errors.Is(err, ErrMissingFonts):
		return "missing_fonts"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrProbeFailed):
		return "probe_failed"
	case errors.Is(err, ErrTranscodeFailed):
		return "transcode_failed"
	case errors.Is(err, ErrOutputMissing):
		return "output_missing"
	case errors.Is(err, ErrNoEligibleVideos):
		return "no_eligible_videos"
	case errors.Is(err, ErrFontCheck):
		return "font_check_failed"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrLocked):
		return "locked"
	default:
		return "error"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
