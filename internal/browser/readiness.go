package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"twisty/internal/services"
)

// ReadyExpression is evaluated in the page; the renderer sets the flag once
// the puzzle geometry has initialized.
const ReadyExpression = "() => window.__exportReady === true"

const (
	// DefaultReadyTimeout bounds the readiness wait.
	DefaultReadyTimeout = 30 * time.Second
	// DefaultPollInterval is the readiness polling cadence.
	DefaultPollInterval = 100 * time.Millisecond
)

// ReadinessProbe reports whether the rendered page may be recorded.
type ReadinessProbe interface {
	Poll(ctx context.Context) (bool, error)
}

// ProbeFunc adapts a function to ReadinessProbe.
type ProbeFunc func(ctx context.Context) (bool, error)

// Poll implements ReadinessProbe.
func (f ProbeFunc) Poll(ctx context.Context) (bool, error) { return f(ctx) }

// PageFlagProbe evaluates ReadyExpression in a page.
type PageFlagProbe struct {
	Page Page
}

// Poll implements ReadinessProbe.
func (p PageFlagProbe) Poll(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	v, err := p.Page.Evaluate(ReadyExpression)
	if err != nil {
		return false, err
	}
	ready, _ := v.(bool)
	return ready, nil
}

// WaitReady polls probe every interval until it reports true. A probe error
// (a navigation destroying the execution context, say) counts as not ready.
// Once timeout elapses it fails with an ErrTimeout-marked error wrapping the
// last probe error, even when a poll is still blocked inside the page.
func WaitReady(ctx context.Context, probe ReadinessProbe, timeout, interval time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultReadyTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr error
	for {
		res, done := pollOnce(waitCtx, probe)
		if res.err != nil && waitCtx.Err() == nil {
			lastErr = res.err
		}
		if !done {
			return notReady(ctx, timeout, lastErr)
		}
		if res.ready {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return notReady(ctx, timeout, lastErr)
		case <-ticker.C:
		}
	}
}

type pollResult struct {
	ready bool
	err   error
}

// pollOnce runs one probe without letting it outlive ctx. done is false
// when ctx ended first; the abandoned poll finishes in the background.
func pollOnce(ctx context.Context, probe ReadinessProbe) (pollResult, bool) {
	ch := make(chan pollResult, 1)
	go func() {
		ready, err := probe.Poll(ctx)
		ch <- pollResult{ready: ready, err: err}
	}()
	select {
	case res := <-ch:
		return res, res.ready || ctx.Err() == nil
	case <-ctx.Done():
		return pollResult{}, false
	}
}

func notReady(parent context.Context, timeout time.Duration, lastErr error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return parent.Err()
	}
	return services.Wrap(services.ErrTimeout, "browser", "wait ready", fmt.Sprintf("page not ready after %s", timeout), lastErr)
}
