package export

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"twisty/internal/blackdetect"
	"twisty/internal/browser"
	"twisty/internal/capture"
	"twisty/internal/config"
	"twisty/internal/history"
	"twisty/internal/job"
	"twisty/internal/logging"
	"twisty/internal/render"
	"twisty/internal/services"
	"twisty/internal/transcode"
)

// Encoder produces the deliverable from a raw capture.
type Encoder interface {
	Run(ctx context.Context, req transcode.Request) error
}

// Recorder persists run outcomes.
type Recorder interface {
	Begin(ctx context.Context, run history.Run) (history.Run, error)
	Finish(ctx context.Context, id string, trimSeconds float64, runErr error) error
}

// Settings carry the renderer and recording parameters shared by all jobs.
type Settings struct {
	BaseURL      string
	Width        int
	Height       int
	ReadyTimeout time.Duration
	PollInterval time.Duration
}

// SettingsFromConfig reads the [renderer] and [capture] sections.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		BaseURL:      cfg.Renderer.BaseURL,
		Width:        cfg.Capture.Width,
		Height:       cfg.Capture.Height,
		ReadyTimeout: cfg.ReadyTimeout(),
		PollInterval: cfg.ReadyPollInterval(),
	}
}

// Dependencies are the collaborators a pipeline drives. History is optional.
type Dependencies struct {
	Driver   browser.Driver
	Detector job.LeadingBlackDetector
	Encoder  Encoder
	History  Recorder
}

// Result describes a finished export.
type Result struct {
	RunID       string
	Output      string
	RawCapture  string
	TrimSeconds float64
	Duration    time.Duration
}

// Pipeline exports one job at a time.
type Pipeline struct {
	settings Settings
	deps     Dependencies
	capture  *capture.Controller
	logger   *slog.Logger
}

// New constructs a pipeline from explicit collaborators.
func New(settings Settings, deps Dependencies, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		settings: settings,
		deps:     deps,
		capture:  capture.NewController(logger),
		logger:   logging.NewComponentLogger(logger, "export"),
	}
}

// NewFromConfig wires the production collaborators: playwright Chromium,
// ffmpeg blackdetect and ffmpeg libx264.
func NewFromConfig(cfg *config.Config, recorder Recorder, logger *slog.Logger) *Pipeline {
	return New(SettingsFromConfig(cfg), Dependencies{
		Driver:   browser.NewPlaywrightDriver(),
		Detector: blackdetect.NewDetector(cfg.FFmpegBinary(), blackdetect.ThresholdsFromConfig(cfg), logger),
		Encoder:  transcode.New(transcode.SettingsFromConfig(cfg), logger),
		History:  recorder,
	}, logger)
}

// Run exports j. On failure the raw capture, if any, is left in the tmp
// directory.
func (p *Pipeline) Run(ctx context.Context, j job.ExportJob) (result Result, err error) {
	started := time.Now()
	if err := j.Validate(); err != nil {
		return Result{}, err
	}

	runID := p.begin(ctx, j)
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithJobName(ctx, j.DisplayName())
	logger := logging.WithContext(ctx, p.logger)
	result = Result{RunID: runID, Output: j.Output}

	defer func() {
		result.Duration = time.Since(started)
		p.finish(ctx, logger, runID, result.TrimSeconds, err)
	}()

	logger.Info("export started",
		logging.String("alg", j.Alg),
		logging.String("output", j.Output),
		logging.String("trim_start", j.Trim.String()),
		logging.Bool("headless", j.Headless),
	)

	tmpDir, err := j.EnsureDirectories()
	if err != nil {
		return result, err
	}

	url, err := render.BuildURL(p.settings.BaseURL, j)
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, "render", "build url", "", err)
	}

	session := browser.NewSession(p.deps.Driver, browser.Config{
		Headless:     j.Headless,
		Width:        p.settings.Width,
		Height:       p.settings.Height,
		VideoDir:     tmpDir,
		ReadyTimeout: p.settings.ReadyTimeout,
		PollInterval: p.settings.PollInterval,
	}, logger)
	defer session.Release()

	stageCtx := services.WithStage(ctx, "browser")
	if err := session.Open(stageCtx, url); err != nil {
		return result, err
	}

	stageCtx = services.WithStage(ctx, "capture")
	raw, err := p.capture.Run(stageCtx, session, j.TailPad)
	if err != nil {
		return result, err
	}
	result.RawCapture = raw

	stageCtx = services.WithStage(ctx, "blackdetect")
	result.TrimSeconds = job.ResolveTrim(stageCtx, j.Trim, p.deps.Detector, raw, logger)

	stageCtx = services.WithStage(ctx, "transcode")
	if err := p.deps.Encoder.Run(stageCtx, transcode.Request{
		RawPath:     raw,
		OutputPath:  j.Output,
		TrimSeconds: result.TrimSeconds,
	}); err != nil {
		return result, err
	}

	logger.Info("export complete",
		logging.String("output", j.Output),
		logging.Float64("trim_seconds", result.TrimSeconds),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (p *Pipeline) begin(ctx context.Context, j job.ExportJob) string {
	if p.deps.History == nil {
		return uuid.NewString()
	}
	run, err := p.deps.History.Begin(ctx, history.Run{
		Name:     j.Name,
		Alg:      j.Alg,
		Output:   j.Output,
		TrimMode: j.Trim.String(),
	})
	if err != nil {
		logging.WarnWithContext(p.logger, "history record failed", "history_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run will not appear in history"),
		)
		return uuid.NewString()
	}
	return run.ID
}

func (p *Pipeline) finish(ctx context.Context, logger *slog.Logger, runID string, trim float64, runErr error) {
	if p.deps.History == nil {
		return
	}
	// The run context may already be canceled; the outcome is still recorded.
	if err := p.deps.History.Finish(context.WithoutCancel(ctx), runID, trim, runErr); err != nil {
		logger.Debug("history finish failed", logging.Error(err))
	}
}
