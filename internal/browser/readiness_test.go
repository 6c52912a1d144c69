package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"twisty/internal/services"
)

func TestWaitReadyAfterPolls(t *testing.T) {
	polls := 0
	probe := ProbeFunc(func(context.Context) (bool, error) {
		polls++
		return polls >= 3, nil
	})
	if err := WaitReady(context.Background(), probe, time.Second, time.Millisecond); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if polls != 3 {
		t.Fatalf("polls = %d, want 3", polls)
	}
}

func TestWaitReadyTimeout(t *testing.T) {
	probe := ProbeFunc(func(context.Context) (bool, error) { return false, nil })
	err := WaitReady(context.Background(), probe, 20*time.Millisecond, 2*time.Millisecond)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("err = %v, want timeout", err)
	}
}

func TestWaitReadyRetriesProbeErrors(t *testing.T) {
	polls := 0
	probe := ProbeFunc(func(context.Context) (bool, error) {
		polls++
		if polls < 3 {
			return false, errors.New("Execution context was destroyed")
		}
		return true, nil
	})
	if err := WaitReady(context.Background(), probe, time.Second, time.Millisecond); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if polls != 3 {
		t.Fatalf("polls = %d, want 3", polls)
	}
}

func TestWaitReadyTimeoutKeepsLastProbeError(t *testing.T) {
	probeErr := errors.New("Execution context was destroyed")
	probe := ProbeFunc(func(context.Context) (bool, error) { return false, probeErr })
	err := WaitReady(context.Background(), probe, 20*time.Millisecond, time.Millisecond)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("err = %v, want timeout", err)
	}
	if !errors.Is(err, probeErr) {
		t.Fatalf("err = %v, want last probe error wrapped", err)
	}
}

func TestWaitReadyBoundsBlockedEvaluate(t *testing.T) {
	d := newFakeDriver()
	d.readyHang = make(chan struct{})
	t.Cleanup(func() { close(d.readyHang) })
	page := &fakePage{d: d}

	start := time.Now()
	err := WaitReady(context.Background(), PageFlagProbe{Page: page}, 50*time.Millisecond, 5*time.Millisecond)
	elapsed := time.Since(start)
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("err = %v, want timeout", err)
	}
	if elapsed > time.Second {
		t.Fatalf("WaitReady returned after %s with a 50ms bound", elapsed)
	}
}

func TestWaitReadyCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	probe := ProbeFunc(func(context.Context) (bool, error) { return false, nil })
	err := WaitReady(ctx, probe, time.Second, time.Millisecond)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want canceled", err)
	}
}

func TestPageFlagProbe(t *testing.T) {
	d := newFakeDriver()
	p := &fakePage{d: d}
	d.ready = true
	ready, err := PageFlagProbe{Page: p}.Poll(context.Background())
	if err != nil || !ready {
		t.Fatalf("Poll = %v, %v", ready, err)
	}
}
