package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"twisty/internal/job"
	"twisty/internal/options"
	"twisty/internal/services"
)

var testDefaults = job.Defaults{
	Alg:        "R U R' U'",
	Puzzle:     "3x3x3",
	SpeedFast:  "2.6",
	SpeedSlow:  "0.65",
	Repeats:    "3",
	Background: "#0e0f12",
	Output:     "out/export.mp4",
	TrimStart:  "auto",
}

const sampleTable = `alg,name,notation,repeats,out,bgImage,trimStart
R U R' U',Sexy Move,,2,out/sexy.mp4,,
F R U R' U' F',OLL 45,,,,bg/wood.png,0.5

# comment line
"R U R' U R U2 R'",Sune
`

func TestRead(t *testing.T) {
	rows, err := Read(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Get("alg") != "R U R' U'" || rows[0].Get("repeats") != "2" {
		t.Fatalf("row 0 = %+v", rows[0].Values)
	}
	if rows[2].Get("name") != "Sune" || rows[2].Get("out") != "" {
		t.Fatalf("row 2 = %+v", rows[2].Values)
	}
	if rows[0].Line != 2 || rows[2].Line != 6 {
		t.Fatalf("lines = %d, %d", rows[0].Line, rows[2].Line)
	}
}

func TestReadEmpty(t *testing.T) {
	rows, err := Read(strings.NewReader(""))
	if err != nil || len(rows) != 0 {
		t.Fatalf("Read empty = %v, %v", rows, err)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "none.csv"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	if err := os.WriteFile(path, []byte(sampleTable), 0o644); err != nil {
		t.Fatal(err)
	}
	rows, err := ReadFile(path)
	if err != nil || len(rows) != 3 {
		t.Fatalf("ReadFile = %d rows, %v", len(rows), err)
	}
}

func TestTokens(t *testing.T) {
	rows, err := Read(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Join(rows[0].Tokens(testDefaults), " | ")
	want := "--alg=R U R' U' | --name=Sexy Move | --notation=R U R' U' | --puzzle=3x3x3 | --speedFast=2.6 | --speedSlow=0.65 | --repeats=2 | --bg=#0e0f12 | --out=out/sexy.mp4"
	if got != want {
		t.Fatalf("tokens\n got %s\nwant %s", got, want)
	}

	second := rows[1].Tokens(testDefaults)
	joined := strings.Join(second, " | ")
	for _, want := range []string{"--bgImage=bg/wood.png", "--trimStart=0.5", "--out=out/oll-45.mp4"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("tokens %s missing %s", joined, want)
		}
	}
}

func TestTokensResolveToJob(t *testing.T) {
	rows, err := Read(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatal(err)
	}
	set := options.Parse(rows[1].Tokens(testDefaults), options.WithLookupEnv(func(string) (string, bool) { return "", false }))
	j := job.Resolve(set, testDefaults, nil)
	if j.Alg != "F R U R' U' F'" || j.Name != "OLL 45" || j.BackgroundImage != "bg/wood.png" {
		t.Fatalf("job = %+v", j)
	}
	if j.Trim.Auto || j.Trim.Seconds != 0.5 {
		t.Fatalf("trim = %+v", j.Trim)
	}
	if j.Output != filepath.Join("out", "oll-45.mp4") {
		t.Fatalf("output = %q", j.Output)
	}
}

func TestDriverRunsInOrder(t *testing.T) {
	rows, err := Read(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	d := NewDriver(func(_ context.Context, row Row, tokens []string) error {
		names = append(names, row.Name())
		if len(tokens) < 9 {
			t.Fatalf("tokens = %v", tokens)
		}
		return nil
	}, testDefaults, nil)

	summary, err := d.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Join(names, ",") != "Sexy Move,OLL 45,Sune" {
		t.Fatalf("order = %v", names)
	}
	if summary.Completed != 3 || summary.Total != 3 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestDriverHaltsOnFailure(t *testing.T) {
	rows, err := Read(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatal(err)
	}
	boom := errors.New("ffmpeg exploded")
	calls := 0
	d := NewDriver(func(context.Context, Row, []string) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	}, testDefaults, nil)

	summary, err := d.Run(context.Background(), rows)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(err.Error(), "row 2/3") {
		t.Fatalf("err = %v", err)
	}
	if calls != 2 || summary.Completed != 1 {
		t.Fatalf("calls = %d, summary = %+v", calls, summary)
	}
}

func TestDriverCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDriver(func(context.Context, Row, []string) error {
		t.Fatal("run called after cancel")
		return nil
	}, testDefaults, nil)
	if _, err := d.Run(ctx, []Row{{Values: map[string]string{"alg": "R"}}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}
