package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"twisty/internal/config"
	"twisty/internal/services"
	"twisty/internal/testsupport"
)

func TestArgs(t *testing.T) {
	tr := New(DefaultSettings(), nil)
	tests := []struct {
		name string
		trim float64
		want string
	}{
		{"no trim", 0, "-i raw.webm -vf fps=30,format=yuv420p,scale=1080:1920:flags=lanczos -c:v libx264 -crf 20 -pix_fmt yuv420p -movflags +faststart -y out.mp4"},
		{"trim", 0.48, "-i raw.webm -ss 0.48 -vf fps=30,format=yuv420p,scale=1080:1920:flags=lanczos -c:v libx264 -crf 20 -pix_fmt yuv420p -movflags +faststart -y out.mp4"},
		{"large explicit trim", 5, "-i raw.webm -ss 5 -vf fps=30,format=yuv420p,scale=1080:1920:flags=lanczos -c:v libx264 -crf 20 -pix_fmt yuv420p -movflags +faststart -y out.mp4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Join(tr.Args(Request{RawPath: "raw.webm", OutputPath: "out.mp4", TrimSeconds: tt.trim}), " ")
			if got != tt.want {
				t.Fatalf("args\n got %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestArgsCustomCRF(t *testing.T) {
	for _, crf := range []int{18, 0} {
		settings := DefaultSettings()
		settings.CRF = crf
		got := strings.Join(New(settings, nil).Args(Request{RawPath: "a", OutputPath: "b"}), " ")
		if want := "-crf " + strconv.Itoa(crf) + " "; !strings.Contains(got, want) {
			t.Fatalf("crf %d: args = %s", crf, got)
		}
	}
}

func TestSettingsFromConfigKeepsLosslessCRF(t *testing.T) {
	cfg := config.Default()
	cfg.Encoding.CRF = 0
	if got := SettingsFromConfig(&cfg).CRF; got != 0 {
		t.Fatalf("crf = %d, want 0", got)
	}
	if got := SettingsFromConfig(nil).CRF; got != DefaultCRF {
		t.Fatalf("nil config crf = %d, want %d", got, DefaultCRF)
	}
}

func writeRaw(t *testing.T) string {
	t.Helper()
	raw := filepath.Join(t.TempDir(), "raw.webm")
	if err := os.WriteFile(raw, []byte("webm"), 0o644); err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestRunDeletesRawOnSuccess(t *testing.T) {
	raw := writeRaw(t)
	tr := New(DefaultSettings(), nil)
	var gotArgs []string
	tr.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	})
	if err := tr.Run(context.Background(), Request{RawPath: raw, OutputPath: "out.mp4"}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(raw); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("raw capture still present: %v", err)
	}
	if gotArgs[len(gotArgs)-1] != "out.mp4" {
		t.Fatalf("args = %v", gotArgs)
	}
}

func TestRunKeepsRawOnFailure(t *testing.T) {
	raw := writeRaw(t)
	tr := New(DefaultSettings(), nil)
	tr.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return []byte("line one\nUnknown encoder 'libx264'\n"), errors.New("exit status 1")
	})
	err := tr.Run(context.Background(), Request{RawPath: raw, OutputPath: "out.mp4"})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("stderr tail missing from %q", err.Error())
	}
	if _, statErr := os.Stat(raw); statErr != nil {
		t.Fatalf("raw capture removed after failure: %v", statErr)
	}
}

func TestRunFailsWhenRawCannotBeRemoved(t *testing.T) {
	raw := filepath.Join(t.TempDir(), "raw.webm")
	if err := os.WriteFile(raw, []byte("webm"), 0o644); err != nil {
		t.Fatal(err)
	}
	tr := New(DefaultSettings(), nil)
	// The runner swaps the capture for a non-empty directory, which os.Remove refuses.
	tr.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		if err := os.Remove(raw); err != nil {
			return nil, err
		}
		return nil, os.MkdirAll(filepath.Join(raw, "segment"), 0o755)
	})

	err := tr.Run(context.Background(), Request{RawPath: raw, OutputPath: "out.mp4"})
	if !errors.Is(err, services.ErrTransient) || !strings.Contains(err.Error(), "remove raw capture") {
		t.Fatalf("err = %v, want raw removal failure", err)
	}
	if _, statErr := os.Stat(raw); statErr != nil {
		t.Fatalf("raw capture should remain: %v", statErr)
	}
}

func TestRunMissingRaw(t *testing.T) {
	tr := New(DefaultSettings(), nil)
	err := tr.Run(context.Background(), Request{RawPath: filepath.Join(t.TempDir(), "none.webm"), OutputPath: "out.mp4"})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestStderrTail(t *testing.T) {
	got := stderrTail([]byte("a\nb\nc\nd\n"), 2)
	if got != "c\nd" {
		t.Fatalf("tail = %q", got)
	}
}

func TestRunWithStubFFmpeg(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFmpegScript(`for last; do :; done
echo encoded > "$last"
`))
	base := testsupport.BaseDir(cfg)
	raw := filepath.Join(base, "out", "tmp", "raw.webm")
	testsupport.WriteRawCapture(t, raw, 1024, 0)
	out := filepath.Join(base, "out", "final.mp4")

	tr := New(SettingsFromConfig(cfg), nil)
	if err := tr.Run(context.Background(), Request{RawPath: raw, OutputPath: out, TrimSeconds: 0.3}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if _, err := os.Stat(raw); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("raw capture still present: %v", err)
	}
}

func TestRunWithFailingFFmpeg(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFFmpegScript("echo 'Invalid data found when processing input' >&2\nexit 1\n"))
	raw := filepath.Join(testsupport.BaseDir(cfg), "raw.webm")
	testsupport.WriteRawCapture(t, raw, 16, 0)

	err := New(SettingsFromConfig(cfg), nil).Run(context.Background(), Request{RawPath: raw, OutputPath: raw + ".mp4"})
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "Invalid data") {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(raw); statErr != nil {
		t.Fatalf("raw capture removed: %v", statErr)
	}
}
