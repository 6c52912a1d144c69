package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"twisty/internal/config"
	"twisty/internal/logging"
	"twisty/internal/services"
)

const (
	// FrameRate is the constant output frame rate.
	FrameRate = 30
	// DefaultCRF is the libx264 quality factor.
	DefaultCRF = 20
	// DefaultWidth and DefaultHeight give the vertical output size.
	DefaultWidth  = 1080
	DefaultHeight = 1920

	stderrTailLines = 12
)

// commandRunner runs name with args and returns its stderr alongside the
// process error.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Settings describe the output profile.
type Settings struct {
	Binary string
	CRF    int
	Width  int
	Height int
}

// DefaultSettings is the deliverable profile without a config file.
func DefaultSettings() Settings {
	return Settings{Binary: "ffmpeg", CRF: DefaultCRF, Width: DefaultWidth, Height: DefaultHeight}
}

// SettingsFromConfig reads the [encoding] and [capture] sections.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return DefaultSettings()
	}
	return Settings{
		Binary: cfg.FFmpegBinary(),
		CRF:    cfg.Encoding.CRF,
		Width:  cfg.Capture.Width,
		Height: cfg.Capture.Height,
	}
}

// Request is one transcode.
type Request struct {
	RawPath     string
	OutputPath  string
	TrimSeconds float64
}

// Transcoder runs ffmpeg for the deliverable profile.
type Transcoder struct {
	settings Settings
	logger   *slog.Logger
	run      commandRunner
}

// New constructs a transcoder. An empty binary or a non-positive size takes
// the default; CRF is used as given, so 0 selects lossless output.
func New(settings Settings, logger *slog.Logger) *Transcoder {
	if strings.TrimSpace(settings.Binary) == "" {
		settings.Binary = "ffmpeg"
	}
	if settings.Width <= 0 {
		settings.Width = DefaultWidth
	}
	if settings.Height <= 0 {
		settings.Height = DefaultHeight
	}
	return &Transcoder{
		settings: settings,
		logger:   logging.NewComponentLogger(logger, "transcode"),
		run:      defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (t *Transcoder) WithCommandRunner(r commandRunner) {
	if t != nil && r != nil {
		t.run = r
	}
}

// Args builds the ffmpeg argument list. The seek is placed after the input so
// it is frame accurate, and omitted entirely when there is nothing to trim.
func (t *Transcoder) Args(req Request) []string {
	args := []string{"-i", req.RawPath}
	if req.TrimSeconds > 0 {
		args = append(args, "-ss", strconv.FormatFloat(req.TrimSeconds, 'f', -1, 64))
	}
	filter := fmt.Sprintf("fps=%d,format=yuv420p,scale=%d:%d:flags=lanczos", FrameRate, t.settings.Width, t.settings.Height)
	return append(args,
		"-vf", filter,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(t.settings.CRF),
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-y", req.OutputPath,
	)
}

// Run transcodes the capture and deletes it on success. Failing to delete
// the capture fails the run even though the output was written.
func (t *Transcoder) Run(ctx context.Context, req Request) error {
	if t == nil {
		return errors.New("transcoder not initialized")
	}
	if strings.TrimSpace(req.RawPath) == "" || strings.TrimSpace(req.OutputPath) == "" {
		return services.Wrap(services.ErrValidation, "transcode", "prepare", "raw and output paths are required", nil)
	}
	if _, err := os.Stat(req.RawPath); err != nil {
		return services.Wrap(services.ErrNotFound, "transcode", "prepare", "raw capture missing", err)
	}

	args := t.Args(req)
	t.logger.Info("transcoding",
		logging.String("raw_capture", req.RawPath),
		logging.String("output", req.OutputPath),
		logging.Float64("trim_seconds", req.TrimSeconds),
	)
	t.logger.Debug("ffmpeg command", logging.String("args", strings.Join(args, " ")))

	started := time.Now()
	stderr, err := t.run(ctx, t.settings.Binary, args...)
	if err != nil {
		msg := "ffmpeg failed"
		if tail := stderrTail(stderr, stderrTailLines); tail != "" {
			msg = msg + ": " + tail
		}
		return services.Wrap(services.ErrExternalTool, "transcode", "encode", msg, err)
	}

	if err := os.Remove(req.RawPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrTransient, "transcode", "remove raw capture", req.RawPath, err)
	}
	t.logger.Info("transcode complete",
		logging.String("output", req.OutputPath),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func stderrTail(stderr []byte, n int) string {
	lines := strings.Split(strings.TrimSpace(string(stderr)), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}
