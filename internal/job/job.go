package job

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"twisty/internal/config"
	"twisty/internal/logging"
	"twisty/internal/options"
	"twisty/internal/services"
)

// Option keys accepted on the per-job command line.
const (
	KeyAlg       = options.KeyAlg
	KeyName      = "name"
	KeyNotation  = "notation"
	KeyPuzzle    = "puzzle"
	KeySpeedFast = "speedFast"
	KeySpeedSlow = "speedSlow"
	KeyRepeats   = "repeats"
	KeyBg        = "bg"
	KeyBgImage   = "bgImage"
	KeyBgVideo   = "bgVideo"
	KeyOut       = "out"
	KeyTrimStart = "trimStart"
	KeyTailPad   = "tailPad"
	KeyShow      = "show"
	KeyHeadless  = "headless"
)

// Keys lists every per-job option in the order the batch driver emits them.
var Keys = []string{
	KeyAlg, KeyName, KeyNotation, KeyPuzzle, KeySpeedFast, KeySpeedSlow,
	KeyRepeats, KeyBg, KeyBgImage, KeyBgVideo, KeyOut, KeyTrimStart, KeyTailPad,
}

// ExportJob is one fully resolved algorithm-to-video request.
type ExportJob struct {
	Alg             string
	Name            string
	Notation        string
	Puzzle          string
	SpeedFast       float64
	SpeedSlow       float64
	Repeats         int
	Background      string
	BackgroundImage string
	BackgroundVideo string
	Output          string
	Trim            TrimMode
	TailPad         time.Duration
	Headless        bool
}

// Defaults are the values applied when an option is absent.
type Defaults struct {
	Alg             string
	Puzzle          string
	SpeedFast       string
	SpeedSlow       string
	Repeats         string
	Background      string
	Output          string
	TrimStart       string
	TailPad         time.Duration
	BgVideoFallback string
	Headless        bool
}

// DefaultsFromConfig maps the [defaults], [capture] and [renderer] sections
// onto job defaults.
func DefaultsFromConfig(cfg *config.Config) Defaults {
	if cfg == nil {
		c := config.Default()
		cfg = &c
	}
	return Defaults{
		Alg:             cfg.Defaults.Alg,
		Puzzle:          cfg.Defaults.Puzzle,
		SpeedFast:       cfg.Defaults.SpeedFast,
		SpeedSlow:       cfg.Defaults.SpeedSlow,
		Repeats:         cfg.Defaults.Repeats,
		Background:      cfg.Defaults.Background,
		Output:          cfg.Defaults.Output,
		TrimStart:       cfg.Defaults.TrimStart,
		TailPad:         time.Duration(cfg.Capture.TailPadMS) * time.Millisecond,
		BgVideoFallback: cfg.Defaults.BgVideoFallback,
		Headless:        cfg.Renderer.Headless,
	}
}

// Resolve builds an ExportJob from parsed options. Numeric values that do not
// parse fall back to their defaults and are reported through logger.
func Resolve(set options.Set, d Defaults, logger *slog.Logger) ExportJob {
	logger = logging.NewComponentLogger(logger, "job")

	alg := set.Alg(d.Alg)
	j := ExportJob{
		Alg:             alg,
		Name:            set.Get(KeyName, ""),
		Notation:        set.Get(KeyNotation, alg),
		Puzzle:          set.Get(KeyPuzzle, d.Puzzle),
		SpeedFast:       floatOption(set, KeySpeedFast, d.SpeedFast, logger),
		SpeedSlow:       floatOption(set, KeySpeedSlow, d.SpeedSlow, logger),
		Repeats:         repeatsOption(set, d.Repeats, logger),
		Background:      set.Get(KeyBg, d.Background),
		BackgroundImage: set.Get(KeyBgImage, ""),
		BackgroundVideo: set.Get(KeyBgVideo, ""),
		Output:          set.Get(KeyOut, d.Output),
		Trim:            ParseTrimMode(set.Get(KeyTrimStart, d.TrimStart)),
		TailPad:         tailPadOption(set, d.TailPad, logger),
		Headless:        headlessOption(set, d.Headless),
	}
	if j.BackgroundVideo == "" && d.BgVideoFallback != "" {
		if info, err := os.Stat(d.BgVideoFallback); err == nil && !info.IsDir() {
			j.BackgroundVideo = d.BgVideoFallback
		}
	}
	if j.Trim.Invalid {
		logging.WarnWithContext(logger, "trim start not understood; no trim applied", "trim_invalid",
			logging.String("value", j.Trim.Raw),
			logging.String(logging.FieldImpact, "leading frames are kept"),
			logging.String(logging.FieldErrorHint, `use "auto" or a number of seconds`),
		)
	}
	return j
}

// Validate checks the invariants the pipeline depends on.
func (j ExportJob) Validate() error {
	if strings.TrimSpace(j.Alg) == "" {
		return services.Wrap(services.ErrValidation, "job", "validate", "alg is empty", nil)
	}
	if strings.TrimSpace(j.Output) == "" {
		return services.Wrap(services.ErrValidation, "job", "validate", "output path is empty", nil)
	}
	if j.Repeats < 1 {
		return services.Wrap(services.ErrValidation, "job", "validate", fmt.Sprintf("repeats must be positive, got %d", j.Repeats), nil)
	}
	if j.TailPad < 0 {
		return services.Wrap(services.ErrValidation, "job", "validate", "tail pad must be >= 0", nil)
	}
	return nil
}

// Directories returns the output parent directory and its sibling tmp
// directory that receives the raw capture.
func (j ExportJob) Directories() (outDir, tmpDir string) {
	outDir = filepath.Dir(j.Output)
	return outDir, filepath.Join(outDir, "tmp")
}

// EnsureDirectories creates the output and tmp directories.
func (j ExportJob) EnsureDirectories() (tmpDir string, err error) {
	outDir, tmpDir := j.Directories()
	for _, dir := range []string{outDir, tmpDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", services.Wrap(services.ErrConfiguration, "job", "prepare", fmt.Sprintf("create directory %q", dir), err)
		}
	}
	return tmpDir, nil
}

// DisplayName is the name used in logs and history, falling back to the alg.
func (j ExportJob) DisplayName() string {
	if name := strings.TrimSpace(j.Name); name != "" {
		return name
	}
	return j.Alg
}

// FormatFloat renders multipliers the way the renderer expects them.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func floatOption(set options.Set, key, def string, logger *slog.Logger) float64 {
	raw := set.Get(key, def)
	if v, err := parseFinite(raw); err == nil {
		return v
	}
	fallback, _ := parseFinite(def)
	logging.WarnWithContext(logger, "option is not a number; using default", "option_invalid",
		logging.String("option", key),
		logging.String("value", raw),
		logging.Float64("default", fallback),
	)
	return fallback
}

func repeatsOption(set options.Set, def string, logger *slog.Logger) int {
	raw := set.Get(KeyRepeats, def)
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
		return n
	}
	fallback, err := strconv.Atoi(strings.TrimSpace(def))
	if err != nil || fallback < 1 {
		fallback = 1
	}
	logging.WarnWithContext(logger, "repeats must be a positive integer; using default", "option_invalid",
		logging.String("option", KeyRepeats),
		logging.String("value", raw),
		logging.Int("default", fallback),
	)
	return fallback
}

func tailPadOption(set options.Set, def time.Duration, logger *slog.Logger) time.Duration {
	raw := set.Get(KeyTailPad, "")
	if raw == "" {
		return def
	}
	ms, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		logging.WarnWithContext(logger, "tail pad is not an integer; using default", "option_invalid",
			logging.String("option", KeyTailPad),
			logging.String("value", raw),
			logging.Duration("default", def),
		)
		return def
	}
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

// headlessOption: --show (any value) or --headless=false switch to a headed browser.
func headlessOption(set options.Set, def bool) bool {
	if set.Has(KeyShow) {
		return false
	}
	return set.Bool(KeyHeadless, def)
}

func parseFinite(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}
