package browser

import "context"

// LaunchOptions configures the browser process.
type LaunchOptions struct {
	Headless bool
	Args     []string
}

// ContextOptions configures an isolated browsing context with video recording.
type ContextOptions struct {
	Width    int
	Height   int
	VideoDir string
}

// Driver starts browser processes.
type Driver interface {
	Launch(ctx context.Context, opts LaunchOptions) (Browser, error)
}

// Browser is a running browser process.
type Browser interface {
	NewContext(opts ContextOptions) (BrowserContext, error)
	Close() error
}

// BrowserContext owns the recording configuration.
type BrowserContext interface {
	NewPage() (Page, error)
	Close() error
}

// Page is a single tab. VideoPath is only meaningful after Close, once the
// recorder has flushed the capture.
type Page interface {
	Goto(url string) error
	Evaluate(expression string) (any, error)
	OnConsole(fn func(kind, text string))
	OnPageError(fn func(err error))
	Close() error
	VideoPath() (string, error)
}
