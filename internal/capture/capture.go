package capture

import (
	"context"
	"log/slog"
	"time"

	"twisty/internal/logging"
	"twisty/internal/services"
)

// StartExpression starts the animation and resolves when it has finished.
const StartExpression = "async () => { await window.startExport(); }"

// DefaultTailPad keeps the final state on screen after the animation.
const DefaultTailPad = 3 * time.Second

// Session is the part of a browser session the controller needs.
type Session interface {
	Evaluate(ctx context.Context, expression string) (any, error)
	Close() (string, error)
}

// Controller runs one capture against a ready session.
type Controller struct {
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewController constructs a capture controller.
func NewController(logger *slog.Logger) *Controller {
	return &Controller{
		logger: logging.NewComponentLogger(logger, "capture"),
		sleep:  sleepContext,
	}
}

// Run starts the animation, waits for it to finish, holds for tailPad, then
// finalizes the recording and returns the raw capture path.
func (c *Controller) Run(ctx context.Context, session Session, tailPad time.Duration) (string, error) {
	if tailPad < 0 {
		tailPad = 0
	}
	started := time.Now()
	c.logger.Info("animation started")
	if _, err := session.Evaluate(ctx, StartExpression); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "capture", "start export", "animation failed in page", err)
	}
	c.logger.Info("animation finished", logging.Duration("elapsed", time.Since(started)))

	if tailPad > 0 {
		c.logger.Debug("holding final frame", logging.Duration("tail_pad", tailPad))
		if err := c.sleep(ctx, tailPad); err != nil {
			return "", err
		}
	}

	raw, err := session.Close()
	if err != nil {
		return "", err
	}
	c.logger.Info("capture complete",
		logging.String("raw_capture", raw),
		logging.Duration("recorded", time.Since(started)),
	)
	return raw, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
