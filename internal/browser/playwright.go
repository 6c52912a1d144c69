package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightDriver launches Chromium through playwright-go. Each Launch starts
// its own driver process, stopped when the returned Browser closes.
type PlaywrightDriver struct{}

// NewPlaywrightDriver returns the production driver.
func NewPlaywrightDriver() *PlaywrightDriver {
	return &PlaywrightDriver{}
}

// Install downloads the playwright driver and the Chromium build it expects.
func Install() error {
	return playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}})
}

// Launch starts playwright and a Chromium process.
func (d *PlaywrightDriver) Launch(ctx context.Context, opts LaunchOptions) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     opts.Args,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}
	return &pwBrowser{pw: pw, browser: b}, nil
}

type pwBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func (b *pwBrowser) NewContext(opts ContextOptions) (BrowserContext, error) {
	size := &playwright.Size{Width: opts.Width, Height: opts.Height}
	c, err := b.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: size,
		RecordVideo: &playwright.RecordVideo{
			Dir:  opts.VideoDir,
			Size: size,
		},
	})
	if err != nil {
		return nil, err
	}
	return &pwContext{context: c}, nil
}

func (b *pwBrowser) Close() error {
	closeErr := b.browser.Close()
	stopErr := b.pw.Stop()
	return errors.Join(closeErr, stopErr)
}

type pwContext struct {
	context playwright.BrowserContext
}

func (c *pwContext) NewPage() (Page, error) {
	p, err := c.context.NewPage()
	if err != nil {
		return nil, err
	}
	// The video handle must be taken before the page closes.
	return &pwPage{page: p, video: p.Video()}, nil
}

func (c *pwContext) Close() error {
	return c.context.Close()
}

type pwPage struct {
	page  playwright.Page
	video playwright.Video
}

func (p *pwPage) Goto(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
	})
	return err
}

func (p *pwPage) Evaluate(expression string) (any, error) {
	return p.page.Evaluate(expression)
}

func (p *pwPage) OnConsole(fn func(kind, text string)) {
	p.page.OnConsole(func(msg playwright.ConsoleMessage) {
		fn(msg.Type(), msg.Text())
	})
}

func (p *pwPage) OnPageError(fn func(err error)) {
	p.page.OnPageError(fn)
}

func (p *pwPage) Close() error {
	return p.page.Close()
}

func (p *pwPage) VideoPath() (string, error) {
	if p.video == nil {
		return "", errors.New("page has no video recording")
	}
	return p.video.Path()
}

var _ Driver = (*PlaywrightDriver)(nil)
