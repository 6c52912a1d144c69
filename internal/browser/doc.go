// Package browser owns the headless Chromium session used to record the
// puzzle renderer.
//
// A Session walks a fixed state machine (launch, context, page, readiness)
// before anything is recorded, and tears the handles down page first so the
// recorder can finalize the video container. Release guarantees teardown on
// every exit path, in reverse acquisition order.
//
// Driver and its handle interfaces isolate playwright-go so tests can
// substitute an in-memory fake and assert call ordering.
package browser
