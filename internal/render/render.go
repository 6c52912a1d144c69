// Package render maps a resolved export job onto the URL consumed by the
// local puzzle renderer.
package render

import (
	"fmt"
	"net/url"
	"strconv"

	"twisty/internal/job"
)

// DefaultBaseURL is the renderer page served by the local dev server.
const DefaultBaseURL = "http://127.0.0.1:5173/export.html"

// BuildURL returns base with the job encoded as query parameters. Every field
// is always present because the page keeps no defaults of its own; bgImage and
// bgVideo are only set when non-empty.
func BuildURL(base string, j job.ExportJob) (string, error) {
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse renderer url: %w", err)
	}
	q := u.Query()
	q.Set("alg", j.Alg)
	q.Set("name", j.Name)
	q.Set("notation", j.Notation)
	q.Set("puzzle", j.Puzzle)
	q.Set("speedFast", job.FormatFloat(j.SpeedFast))
	q.Set("speedSlow", job.FormatFloat(j.SpeedSlow))
	q.Set("repeats", strconv.Itoa(j.Repeats))
	q.Set("bg", j.Background)
	if j.BackgroundImage != "" {
		q.Set("bgImage", j.BackgroundImage)
	}
	if j.BackgroundVideo != "" {
		q.Set("bgVideo", j.BackgroundVideo)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
