package browser

import (
	"context"
	"errors"
	"strings"
)

type fakeRecorder struct {
	calls []string
}

func (r *fakeRecorder) add(call string) { r.calls = append(r.calls, call) }

func (r *fakeRecorder) joined() string { return strings.Join(r.calls, ",") }

type fakeDriver struct {
	rec         *fakeRecorder
	launchErr   error
	gotoErr     error
	videoPath   string
	ready       bool
	readyHang   chan struct{}
	launchOpts  LaunchOptions
	contextOpts ContextOptions
	page        *fakePage
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{rec: &fakeRecorder{}, videoPath: "/tmp/raw/abc.webm", ready: true}
}

func (d *fakeDriver) Launch(_ context.Context, opts LaunchOptions) (Browser, error) {
	d.rec.add("launch")
	d.launchOpts = opts
	if d.launchErr != nil {
		return nil, d.launchErr
	}
	return &fakeBrowser{d: d}, nil
}

type fakeBrowser struct{ d *fakeDriver }

func (b *fakeBrowser) NewContext(opts ContextOptions) (BrowserContext, error) {
	b.d.rec.add("new_context")
	b.d.contextOpts = opts
	return &fakeContext{d: b.d}, nil
}

func (b *fakeBrowser) Close() error {
	b.d.rec.add("browser_close")
	return nil
}

type fakeContext struct{ d *fakeDriver }

func (c *fakeContext) NewPage() (Page, error) {
	c.d.rec.add("new_page")
	p := &fakePage{d: c.d}
	c.d.page = p
	return p, nil
}

func (c *fakeContext) Close() error {
	c.d.rec.add("context_close")
	return nil
}

type fakePage struct {
	d         *fakeDriver
	closed    bool
	evaluated []string
	onConsole func(kind, text string)
	onError   func(err error)
}

func (p *fakePage) Goto(url string) error {
	p.d.rec.add("goto")
	return p.d.gotoErr
}

func (p *fakePage) Evaluate(expression string) (any, error) {
	p.evaluated = append(p.evaluated, expression)
	if expression == ReadyExpression {
		if p.d.readyHang != nil {
			<-p.d.readyHang
		}
		return p.d.ready, nil
	}
	p.d.rec.add("evaluate")
	return nil, nil
}

func (p *fakePage) OnConsole(fn func(kind, text string)) { p.onConsole = fn }

func (p *fakePage) OnPageError(fn func(err error)) { p.onError = fn }

func (p *fakePage) Close() error {
	p.d.rec.add("page_close")
	p.closed = true
	return nil
}

func (p *fakePage) VideoPath() (string, error) {
	p.d.rec.add("video_path")
	if !p.closed {
		return "", errors.New("video not finalized")
	}
	return p.d.videoPath, nil
}
