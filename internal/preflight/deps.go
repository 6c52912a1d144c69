package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"twisty/internal/config"
)

const versionProbeTimeout = 3 * time.Second

// Requirement names an external binary and how to ask it for its version.
type Requirement struct {
	Name    string
	Command string
	// VersionArgs, when set, are passed to the binary and the first line of
	// output is reported as its version.
	VersionArgs []string
	Optional    bool
}

// Status is the resolved state of one Requirement.
type Status struct {
	Name      string
	Command   string
	Version   string
	Optional  bool
	Available bool
	Detail    string
}

// Summary is the text shown next to the status tag.
func (s Status) Summary() string {
	if !s.Available {
		return s.Detail
	}
	if s.Version != "" {
		return fmt.Sprintf("%s (%s)", s.Command, s.Version)
	}
	return s.Command
}

// CheckBinaries resolves every requirement on PATH and probes its version.
// A failed version probe does not make a binary unavailable.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{Name: req.Name, Command: strings.TrimSpace(req.Command), Optional: req.Optional}
		if status.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(status.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", status.Command)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Command = path
		if len(req.VersionArgs) > 0 {
			status.Version = probeVersion(ctx, path, req.VersionArgs)
		}
		results = append(results, status)
	}
	return results
}

func probeVersion(ctx context.Context, path string, args []string) string {
	probeCtx, cancel := context.WithTimeout(ctx, versionProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(probeCtx, path, args...).Output()
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	// "ffmpeg version 7.1 Copyright (c) ..." keeps the leading three words.
	if fields := strings.Fields(first); len(fields) > 3 {
		first = strings.Join(fields[:3], " ")
	}
	return strings.TrimSpace(first)
}

// CheckSystemDeps evaluates the binaries needed to export with cfg.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []Status {
	return CheckBinaries(ctx, []Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			VersionArgs: []string{"-hide_banner", "-version"},
		},
	})
}
