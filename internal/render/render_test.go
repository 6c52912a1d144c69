package render

import (
	"net/url"
	"testing"

	"twisty/internal/job"
)

func sampleJob() job.ExportJob {
	return job.ExportJob{
		Alg:        "R U R' U'",
		Name:       "Sexy move",
		Notation:   "R U R' U'",
		Puzzle:     "3x3x3",
		SpeedFast:  2.6,
		SpeedSlow:  0.65,
		Repeats:    3,
		Background: "#0e0f12",
	}
}

func TestBuildURLIncludesAllRequiredParams(t *testing.T) {
	raw, err := BuildURL("", sampleJob())
	if err != nil {
		t.Fatalf("BuildURL returned error: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if u.Host != "127.0.0.1:5173" || u.Path != "/export.html" {
		t.Fatalf("unexpected base %q", raw)
	}
	q := u.Query()
	want := map[string]string{
		"alg":       "R U R' U'",
		"name":      "Sexy move",
		"notation":  "R U R' U'",
		"puzzle":    "3x3x3",
		"speedFast": "2.6",
		"speedSlow": "0.65",
		"repeats":   "3",
		"bg":        "#0e0f12",
	}
	for key, value := range want {
		if got := q.Get(key); got != value {
			t.Fatalf("%s = %q, want %q", key, got, value)
		}
	}
	for _, key := range []string{"bgImage", "bgVideo"} {
		if q.Has(key) {
			t.Fatalf("expected %s to be omitted", key)
		}
	}
}

func TestBuildURLKeepsEmptyName(t *testing.T) {
	j := sampleJob()
	j.Name = ""
	raw, err := BuildURL(DefaultBaseURL, j)
	if err != nil {
		t.Fatalf("BuildURL returned error: %v", err)
	}
	u, _ := url.Parse(raw)
	if !u.Query().Has("name") {
		t.Fatalf("expected empty name to be present in %q", raw)
	}
}

func TestBuildURLAddsOptionalBackgrounds(t *testing.T) {
	j := sampleJob()
	j.BackgroundImage = "img/bg one.png"
	j.BackgroundVideo = "public/fond.mp4"
	raw, err := BuildURL("http://localhost:4000/export.html?theme=dark", j)
	if err != nil {
		t.Fatalf("BuildURL returned error: %v", err)
	}
	u, _ := url.Parse(raw)
	q := u.Query()
	if q.Get("bgImage") != "img/bg one.png" || q.Get("bgVideo") != "public/fond.mp4" {
		t.Fatalf("unexpected backgrounds in %q", raw)
	}
	if q.Get("theme") != "dark" {
		t.Fatalf("expected existing query to be preserved in %q", raw)
	}
}

func TestBuildURLRejectsBadBase(t *testing.T) {
	if _, err := BuildURL("://bad", sampleJob()); err == nil {
		t.Fatal("expected error for malformed base")
	}
}
