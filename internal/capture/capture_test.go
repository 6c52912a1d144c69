package capture

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"twisty/internal/services"
)

type fakeSession struct {
	calls   []string
	evalErr error
	raw     string
}

func (s *fakeSession) Evaluate(_ context.Context, expression string) (any, error) {
	s.calls = append(s.calls, "evaluate:"+expression)
	return nil, s.evalErr
}

func (s *fakeSession) Close() (string, error) {
	s.calls = append(s.calls, "close")
	return s.raw, nil
}

func TestRunOrder(t *testing.T) {
	c := NewController(nil)
	var slept time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	}
	s := &fakeSession{raw: "/out/tmp/a.webm"}

	raw, err := c.Run(context.Background(), s, 3*time.Second)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if raw != "/out/tmp/a.webm" {
		t.Fatalf("raw = %q", raw)
	}
	if slept != 3*time.Second {
		t.Fatalf("tail pad = %s", slept)
	}
	want := "evaluate:" + StartExpression + "|close"
	if got := strings.Join(s.calls, "|"); got != want {
		t.Fatalf("calls = %s", got)
	}
}

func TestRunZeroTailPadSkipsSleep(t *testing.T) {
	c := NewController(nil)
	c.sleep = func(context.Context, time.Duration) error {
		t.Fatal("sleep called with zero tail pad")
		return nil
	}
	if _, err := c.Run(context.Background(), &fakeSession{raw: "x"}, 0); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunEvaluateFailureDoesNotClose(t *testing.T) {
	s := &fakeSession{evalErr: errors.New("startExport is not defined")}
	_, err := NewController(nil).Run(context.Background(), s, time.Second)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v", err)
	}
	if len(s.calls) != 1 {
		t.Fatalf("calls = %v", s.calls)
	}
}

func TestSleepContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
