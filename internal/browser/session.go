package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"twisty/internal/logging"
	"twisty/internal/services"
)

// State is a step of the session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateLaunching
	StateContextReady
	StatePageLoaded
	StateReadyWaiting
	StateReady
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLaunching:
		return "launching"
	case StateContextReady:
		return "context_ready"
	case StatePageLoaded:
		return "page_loaded"
	case StateReadyWaiting:
		return "ready_waiting"
	case StateReady:
		return "ready"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Viewport and recording size: vertical 9:16.
const (
	DefaultWidth  = 1080
	DefaultHeight = 1920
)

// launchArgs keep software GL available and stop Chromium from throttling
// animation timers when the window is occluded or backgrounded.
var launchArgs = []string{
	"--use-angle=swiftshader",
	"--use-gl=egl",
	"--enable-webgl",
	"--ignore-gpu-blocklist",
	"--enable-features=VaapiVideoDecoder",
	"--enable-zero-copy",
	"--enable-gpu-rasterization",
	"--disable-background-timer-throttling",
	"--disable-renderer-backgrounding",
	"--disable-backgrounding-occluded-windows",
	"--disable-features=CalculateNativeWinOcclusion",
}

// LaunchArgs returns the Chromium argument set for the requested mode.
func LaunchArgs(headless bool) []string {
	args := make([]string, 0, len(launchArgs)+1)
	if headless {
		args = append(args, "--headless=new")
	}
	return append(args, launchArgs...)
}

// Config describes one recording session.
type Config struct {
	Headless     bool
	Width        int
	Height       int
	VideoDir     string
	ReadyTimeout time.Duration
	PollInterval time.Duration
}

// Session drives a single browser, context and page through recording.
// It is not safe for concurrent use.
type Session struct {
	driver Driver
	cfg    Config
	logger *slog.Logger

	state   State
	browser Browser
	context BrowserContext
	page    Page
	rawPath string

	// newProbe is swapped in tests.
	newProbe func(Page) ReadinessProbe
}

// NewSession prepares a session; nothing is launched until Open.
func NewSession(driver Driver, cfg Config, logger *slog.Logger) *Session {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	return &Session{
		driver:   driver,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "browser"),
		newProbe: func(p Page) ReadinessProbe { return PageFlagProbe{Page: p} },
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

func (s *Session) setState(next State) {
	s.logger.Debug("session state", logging.String("from", s.state.String()), logging.String("to", next.String()))
	s.state = next
}

// Open launches the browser, navigates to url and blocks until the page
// reports readiness. On error the caller must still call Release.
func (s *Session) Open(ctx context.Context, url string) error {
	if s.state != StateUninitialized {
		return fmt.Errorf("open session: already %s", s.state)
	}

	s.setState(StateLaunching)
	s.logger.Info("launching chromium", logging.Bool("headless", s.cfg.Headless))
	browser, err := s.driver.Launch(ctx, LaunchOptions{
		Headless: s.cfg.Headless,
		Args:     LaunchArgs(s.cfg.Headless),
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "browser", "launch", "", err)
	}
	s.browser = browser

	bctx, err := browser.NewContext(ContextOptions{
		Width:    s.cfg.Width,
		Height:   s.cfg.Height,
		VideoDir: s.cfg.VideoDir,
	})
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "browser", "new context", "", err)
	}
	s.context = bctx
	s.setState(StateContextReady)

	page, err := bctx.NewPage()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "browser", "new page", "", err)
	}
	s.page = page
	page.OnConsole(s.logConsole)
	page.OnPageError(s.logPageError)

	s.logger.Info("loading page", logging.String("url", url))
	if err := page.Goto(url); err != nil {
		return services.Wrap(services.ErrExternalTool, "browser", "navigate", url, err)
	}
	s.setState(StatePageLoaded)

	s.setState(StateReadyWaiting)
	s.logger.Info("waiting for renderer readiness", logging.Duration("timeout", s.readyTimeout()))
	if err := WaitReady(ctx, s.newProbe(page), s.readyTimeout(), s.cfg.PollInterval); err != nil {
		return err
	}
	s.setState(StateReady)
	s.logger.Info("renderer ready")
	return nil
}

// Evaluate runs expression in the page. The session must be ready.
func (s *Session) Evaluate(ctx context.Context, expression string) (any, error) {
	if s.state != StateReady {
		return nil, fmt.Errorf("evaluate: session is %s", s.state)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.page.Evaluate(expression)
}

// Close finalizes the recording: page, then the raw video path, then context,
// then browser. It runs once and returns the raw capture path.
func (s *Session) Close() (string, error) {
	switch s.state {
	case StateClosed:
		if s.rawPath == "" {
			return "", errors.New("close session: already released")
		}
		return s.rawPath, nil
	case StateReady:
	default:
		return "", fmt.Errorf("close session: session is %s", s.state)
	}

	s.setState(StateClosing)
	page := s.page
	if err := page.Close(); err != nil {
		s.page = nil
		s.Release()
		return "", services.Wrap(services.ErrExternalTool, "browser", "close page", "", err)
	}
	s.page = nil

	rawPath, err := page.VideoPath()
	if err != nil {
		s.Release()
		return "", services.Wrap(services.ErrExternalTool, "browser", "video path", "", err)
	}

	if err := s.context.Close(); err != nil {
		s.context = nil
		s.Release()
		return "", services.Wrap(services.ErrExternalTool, "browser", "close context", "", err)
	}
	s.context = nil

	browser := s.browser
	s.browser = nil
	if err := browser.Close(); err != nil {
		s.setState(StateClosed)
		return "", services.Wrap(services.ErrExternalTool, "browser", "close browser", "", err)
	}

	s.rawPath = rawPath
	s.setState(StateClosed)
	s.logger.Info("raw capture finalized", logging.String("raw_capture", rawPath))
	return rawPath, nil
}

// Release closes whatever is still open in reverse acquisition order. It is
// a no-op once the session is closed, so it is safe to defer.
func (s *Session) Release() {
	if s.state == StateClosed {
		return
	}
	if s.state == StateUninitialized {
		s.state = StateClosed
		return
	}
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			s.logger.Debug("release page", logging.Error(err))
		}
		s.page = nil
	}
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			s.logger.Debug("release context", logging.Error(err))
		}
		s.context = nil
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Debug("release browser", logging.Error(err))
		}
		s.browser = nil
	}
	s.setState(StateClosed)
}

func (s *Session) readyTimeout() time.Duration {
	if s.cfg.ReadyTimeout > 0 {
		return s.cfg.ReadyTimeout
	}
	return DefaultReadyTimeout
}

func (s *Session) logConsole(kind, text string) {
	s.logger.Info("page console", logging.String("type", kind), logging.String("text", text))
}

func (s *Session) logPageError(err error) {
	logging.WarnWithContext(s.logger, "page script error", "page_error",
		logging.Error(err),
		logging.String(logging.FieldImpact, "recording continues"),
		logging.String(logging.FieldErrorHint, "check the renderer console"),
	)
}
