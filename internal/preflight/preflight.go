package preflight

import (
	"context"
	"fmt"
	"strings"

	"twisty/internal/config"
	"twisty/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks an export needs: state directory, required
// binaries, and the renderer page.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("State directory", cfg.Paths.StateDir)}
	for _, status := range CheckSystemDeps(ctx, cfg) {
		if status.Optional && !status.Available {
			continue
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: status.Summary()})
	}
	results = append(results, CheckRenderer(ctx, cfg.Renderer.BaseURL))
	return results
}

// AsError returns an error naming every failed check, or nil.
func AsError(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check", strings.Join(failed, "; "), nil)
}
