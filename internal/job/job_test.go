package job

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"twisty/internal/config"
	"twisty/internal/logging"
	"twisty/internal/options"
	"twisty/internal/services"
)

func resolveTokens(t *testing.T, d Defaults, tokens ...string) ExportJob {
	t.Helper()
	set := options.Parse(tokens, options.WithLookupEnv(func(string) (string, bool) { return "", false }))
	return Resolve(set, d, logging.NewNop())
}

func testDefaults() Defaults {
	cfg := config.Default()
	d := DefaultsFromConfig(&cfg)
	d.BgVideoFallback = ""
	return d
}

func TestResolveAppliesDefaults(t *testing.T) {
	j := resolveTokens(t, testDefaults())

	if j.Alg != "R U R' U'" {
		t.Fatalf("unexpected alg %q", j.Alg)
	}
	if j.Notation != j.Alg {
		t.Fatalf("notation should default to alg, got %q", j.Notation)
	}
	if j.Puzzle != "3x3x3" || j.SpeedFast != 2.6 || j.SpeedSlow != 0.65 || j.Repeats != 3 {
		t.Fatalf("unexpected defaults %+v", j)
	}
	if j.Background != "#0e0f12" || j.BackgroundImage != "" || j.BackgroundVideo != "" {
		t.Fatalf("unexpected backgrounds %+v", j)
	}
	if j.Output != "out/export.mp4" {
		t.Fatalf("unexpected output %q", j.Output)
	}
	if !j.Trim.Auto {
		t.Fatalf("expected auto trim, got %+v", j.Trim)
	}
	if j.TailPad != 3*time.Second {
		t.Fatalf("unexpected tail pad %v", j.TailPad)
	}
	if !j.Headless {
		t.Fatal("expected headless by default")
	}
	if err := j.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestResolveExplicitValues(t *testing.T) {
	j := resolveTokens(t, testDefaults(),
		"--alg", "R", "U", "R'", "U'", "R'", "F",
		"--name=T", "perm",
		"--notation=T-perm",
		"--puzzle=2x2x2",
		"--speedFast=3",
		"--speedSlow=0.5",
		"--repeats=2",
		"--bgImage=bg.png",
		"--out=videos/t.mp4",
		"--trimStart=1.25",
		"--tailPad=500",
	)
	if j.Alg != "R U R' U' R' F" || j.Name != "T perm" || j.Notation != "T-perm" {
		t.Fatalf("unexpected text fields %+v", j)
	}
	if j.Puzzle != "2x2x2" || j.SpeedFast != 3 || j.SpeedSlow != 0.5 || j.Repeats != 2 {
		t.Fatalf("unexpected numeric fields %+v", j)
	}
	if j.BackgroundImage != "bg.png" || j.Output != "videos/t.mp4" {
		t.Fatalf("unexpected paths %+v", j)
	}
	if j.Trim.Auto || j.Trim.Seconds != 1.25 {
		t.Fatalf("unexpected trim %+v", j.Trim)
	}
	if j.TailPad != 500*time.Millisecond {
		t.Fatalf("unexpected tail pad %v", j.TailPad)
	}
}

func TestResolveDegradesInvalidNumbers(t *testing.T) {
	j := resolveTokens(t, testDefaults(), "--speedFast=fast", "--repeats=0", "--tailPad=soon")
	if j.SpeedFast != 2.6 {
		t.Fatalf("expected default speedFast, got %v", j.SpeedFast)
	}
	if j.Repeats != 3 {
		t.Fatalf("expected default repeats, got %d", j.Repeats)
	}
	if j.TailPad != 3*time.Second {
		t.Fatalf("expected default tail pad, got %v", j.TailPad)
	}
}

func TestResolveNormalizesSpeeds(t *testing.T) {
	j := resolveTokens(t, testDefaults(), "--speedFast=2.60", "--speedSlow=1e1")
	if j.SpeedFast != 2.6 || j.SpeedSlow != 10 {
		t.Fatalf("speeds = %v / %v", j.SpeedFast, j.SpeedSlow)
	}
	if got := FormatFloat(j.SpeedFast) + " " + FormatFloat(j.SpeedSlow); got != "2.6 10" {
		t.Fatalf("formatted speeds = %q", got)
	}
}

func TestResolveNegativeTailPadFloorsAtZero(t *testing.T) {
	j := resolveTokens(t, testDefaults(), "--tailPad=-20")
	if j.TailPad != 0 {
		t.Fatalf("expected zero tail pad, got %v", j.TailPad)
	}
}

func TestResolveHeadlessSwitches(t *testing.T) {
	d := testDefaults()
	if resolveTokens(t, d, "--show").Headless {
		t.Fatal("--show should select headed mode")
	}
	if resolveTokens(t, d, "--headless=false").Headless {
		t.Fatal("--headless=false should select headed mode")
	}
	if !resolveTokens(t, d, "--headless").Headless {
		t.Fatal("bare --headless keeps headless mode")
	}
}

func TestResolveBackgroundVideoFallback(t *testing.T) {
	dir := t.TempDir()
	fallback := filepath.Join(dir, "fond.mp4")
	if err := os.WriteFile(fallback, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fallback: %v", err)
	}
	d := testDefaults()
	d.BgVideoFallback = fallback

	if got := resolveTokens(t, d).BackgroundVideo; got != fallback {
		t.Fatalf("expected fallback video, got %q", got)
	}
	if got := resolveTokens(t, d, "--bgVideo=own.mp4").BackgroundVideo; got != "own.mp4" {
		t.Fatalf("explicit video should win, got %q", got)
	}

	d.BgVideoFallback = filepath.Join(dir, "missing.mp4")
	if got := resolveTokens(t, d).BackgroundVideo; got != "" {
		t.Fatalf("missing fallback should be ignored, got %q", got)
	}
}

func TestValidate(t *testing.T) {
	base := resolveTokens(t, testDefaults())

	tests := []struct {
		name   string
		mutate func(*ExportJob)
	}{
		{"empty alg", func(j *ExportJob) { j.Alg = "  " }},
		{"empty out", func(j *ExportJob) { j.Output = "" }},
		{"zero repeats", func(j *ExportJob) { j.Repeats = 0 }},
		{"negative tail", func(j *ExportJob) { j.TailPad = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := base
			tt.mutate(&j)
			err := j.Validate()
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestEnsureDirectoriesCreatesOutAndTmp(t *testing.T) {
	root := t.TempDir()
	j := ExportJob{Output: filepath.Join(root, "a", "b", "clip.mp4")}
	tmp, err := j.EnsureDirectories()
	if err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	if tmp != filepath.Join(root, "a", "b", "tmp") {
		t.Fatalf("unexpected tmp dir %q", tmp)
	}
	if info, err := os.Stat(tmp); err != nil || !info.IsDir() {
		t.Fatalf("expected tmp dir to exist: %v", err)
	}
}

func TestDisplayNameFallsBackToAlg(t *testing.T) {
	if got := (ExportJob{Alg: "R U"}).DisplayName(); got != "R U" {
		t.Fatalf("DisplayName() = %q", got)
	}
	if got := (ExportJob{Alg: "R U", Name: "x"}).DisplayName(); got != "x" {
		t.Fatalf("DisplayName() = %q", got)
	}
}
