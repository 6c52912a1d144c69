package job

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"twisty/internal/logging"
)

// TrimAuto selects heuristic leading-black detection.
const TrimAuto = "auto"

// TrimMode is either automatic detection or an explicit offset in seconds.
type TrimMode struct {
	Auto    bool
	Seconds float64
	// Invalid marks an explicit value that did not parse; Seconds is 0.
	Invalid bool
	Raw     string
}

// ParseTrimMode interprets the trimStart option. Explicit values are floored
// at 0 and carry no upper bound.
func ParseTrimMode(raw string) TrimMode {
	trimmed := strings.TrimSpace(raw)
	if trimmed == TrimAuto {
		return TrimMode{Auto: true, Raw: raw}
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return TrimMode{Invalid: true, Raw: raw}
	}
	return TrimMode{Seconds: math.Max(0, v), Raw: raw}
}

func (m TrimMode) String() string {
	if m.Auto {
		return TrimAuto
	}
	return FormatFloat(m.Seconds)
}

// LeadingBlackDetector measures black frames at the start of a raw capture.
type LeadingBlackDetector interface {
	Detect(ctx context.Context, rawPath string) (float64, error)
}

// ResolveTrim turns the mode into a seek offset. Explicit values are used as
// given and never consult the detector. Detection failures degrade to 0.
func ResolveTrim(ctx context.Context, mode TrimMode, detector LeadingBlackDetector, rawPath string, logger *slog.Logger) float64 {
	if !mode.Auto {
		return mode.Seconds
	}
	if detector == nil {
		return 0
	}
	seconds, err := detector.Detect(ctx, rawPath)
	if err != nil {
		logging.WarnWithContext(logger, "leading black detection failed; no trim applied", "blackdetect_failed",
			logging.Error(err),
			logging.String("raw_capture", rawPath),
			logging.String(logging.FieldImpact, "leading frames are kept"),
			logging.String(logging.FieldErrorHint, "check the ffmpeg installation or pass --trimStart"),
		)
		return 0
	}
	return seconds
}
