package blackdetect

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"twisty/internal/config"
	"twisty/internal/logging"
	"twisty/internal/services"
)

const (
	// MinBlackDuration is the shortest black run ffmpeg reports, in seconds.
	MinBlackDuration = 0.05
	// PixelThreshold is the ratio of dark pixels for a frame to count as black.
	PixelThreshold = 0.98
	// ClampCeiling bounds a leading black reading.
	ClampCeiling = 3.0
	// SafetyCeiling discards readings above it; longer runs are content.
	SafetyCeiling = 1.0
)

var (
	blackStartPattern = regexp.MustCompile(`black_start:(-?[0-9.]+)`)
	blackEndPattern   = regexp.MustCompile(`black_end:([0-9.]+)`)
)

// commandRunner runs name with args and returns its stderr. A non-nil error
// means the process could not be started.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Thresholds tune the filter and the interpretation of its output.
type Thresholds struct {
	MinBlackSeconds float64
	PixelThreshold  float64
	ClampCeiling    float64
	SafetyCeiling   float64
}

// DefaultThresholds returns the built-in heuristic.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinBlackSeconds: MinBlackDuration,
		PixelThreshold:  PixelThreshold,
		ClampCeiling:    ClampCeiling,
		SafetyCeiling:   SafetyCeiling,
	}
}

// ThresholdsFromConfig reads the [detection] section.
func ThresholdsFromConfig(cfg *config.Config) Thresholds {
	if cfg == nil {
		return DefaultThresholds()
	}
	return Thresholds{
		MinBlackSeconds: cfg.Detection.MinBlackSeconds,
		PixelThreshold:  cfg.Detection.PixelThreshold,
		ClampCeiling:    cfg.Detection.ClampCeiling,
		SafetyCeiling:   cfg.Detection.SafetyCeiling,
	}
}

// Detector runs ffmpeg blackdetect over a capture.
type Detector struct {
	binary     string
	thresholds Thresholds
	logger     *slog.Logger
	run        commandRunner
}

// NewDetector constructs a detector using the given ffmpeg binary.
func NewDetector(binary string, thresholds Thresholds, logger *slog.Logger) *Detector {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Detector{
		binary:     binary,
		thresholds: thresholds,
		logger:     logging.NewComponentLogger(logger, "blackdetect"),
		run:        defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (d *Detector) WithCommandRunner(r commandRunner) {
	if d != nil && r != nil {
		d.run = r
	}
}

// Args returns the ffmpeg argument list for rawPath.
func (d *Detector) Args(rawPath string) []string {
	filter := fmt.Sprintf("blackdetect=d=%s:pic_th=%s",
		strconv.FormatFloat(d.thresholds.MinBlackSeconds, 'f', -1, 64),
		strconv.FormatFloat(d.thresholds.PixelThreshold, 'f', -1, 64),
	)
	return []string{"-hide_banner", "-i", rawPath, "-vf", filter, "-an", "-f", "null", "-"}
}

// Detect returns the leading black duration in seconds, or 0.
func (d *Detector) Detect(ctx context.Context, rawPath string) (float64, error) {
	if d == nil {
		return 0, errors.New("detector not initialized")
	}
	stderr, err := d.run(ctx, d.binary, d.Args(rawPath)...)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "blackdetect", "run ffmpeg", d.binary, err)
	}
	seconds := ParseLeading(stderr, d.thresholds.ClampCeiling, d.thresholds.SafetyCeiling)
	d.logger.Info("leading black measured",
		logging.String("raw_capture", rawPath),
		logging.Float64("seconds", seconds),
	)
	return seconds, nil
}

// ParseLeading scans ffmpeg diagnostics for the first black run that starts
// at zero. The reading is clamped to [0, clamp]; anything above safety is
// treated as no leading black.
func ParseLeading(stderr []byte, clamp, safety float64) float64 {
	leading := 0.0
	scanner := bufio.NewScanner(bytes.NewReader(stderr))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !startsAtZero(line) {
			continue
		}
		m := blackEndPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		leading = math.Min(clamp, math.Max(0, v))
		break
	}
	if leading > safety {
		return 0
	}
	return leading
}

func startsAtZero(line string) bool {
	m := blackStartPattern.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	return err == nil && v == 0
}

// defaultCommandRunner ignores the exit status: ffmpeg writing to the null
// muxer may exit non-zero while its diagnostics are still usable.
func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return stderr.Bytes(), nil
		}
		return nil, err
	}
	return stderr.Bytes(), nil
}
