package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"twisty/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique state directory per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Defaults.Output = filepath.Join(base, "out", "export.mp4")
	cfgVal.Defaults.BgVideoFallback = ""
	cfgVal.Capture.TailPadMS = 0
	if err := os.MkdirAll(cfgVal.Paths.StateDir, 0o755); err != nil {
		t.Fatalf("mkdir state dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithRendererURL points the renderer at a test server.
func WithRendererURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Renderer.BaseURL = url
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := StubDir(b.t, b.baseDir)
		for _, name := range names {
			WriteScript(b.t, filepath.Join(binDir, name), "exit 0\n")
		}
	}
}

// WithFFmpegScript installs an ffmpeg stub running body and points the
// config at it.
func WithFFmpegScript(body string) ConfigOption {
	return func(b *configBuilder) {
		binDir := StubDir(b.t, b.baseDir)
		target := filepath.Join(binDir, "ffmpeg")
		WriteScript(b.t, target, body)
		b.cfg.Encoding.FFmpegBinary = target
	}
}

// StubDir creates base/bin and prepends it to PATH for the test.
func StubDir(t testing.TB, base string) string {
	t.Helper()
	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
	return binDir
}

// WriteScript writes an executable /bin/sh script.
func WriteScript(t testing.TB, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
