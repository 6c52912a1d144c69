package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"twisty/internal/logging"
)

// DefaultMaxAge is how old a raw capture must be before clean removes it.
const DefaultMaxAge = 24 * time.Hour

// CleanStaleResult contains the outcome of a stale capture cleanup.
type CleanStaleResult struct {
	Removed []string
	Bytes   int64
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// Capture describes one entry in the tmp directory.
type Capture struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// CleanStale removes captures in tmpDir last modified before now-maxAge.
// A missing directory is not an error. Cancellation stops the scan early and
// returns what was removed so far.
func CleanStale(ctx context.Context, tmpDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	captures, err := List(tmpDir)
	if err != nil {
		result.Errors = append(result.Errors, CleanupError{Path: tmpDir, Error: err})
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, capture := range captures {
		if ctx.Err() != nil {
			break
		}
		if !capture.ModTime.Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(capture.Path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: capture.Path, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale raw capture", "capture_cleanup_failed",
				logging.String("path", capture.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check output directory permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, capture.Path)
		result.Bytes += capture.Size
		logger.Info("removed stale raw capture",
			logging.String("path", capture.Path),
			logging.Duration("age", time.Since(capture.ModTime).Round(time.Second)),
			logging.String(logging.FieldEventType, "capture_cleanup"),
		)
	}

	return result
}

// List returns the entries of tmpDir oldest first. A blank or missing
// directory yields no entries.
func List(tmpDir string) ([]Capture, error) {
	tmpDir = strings.TrimSpace(tmpDir)
	if tmpDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	captures := make([]Capture, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(tmpDir, entry.Name())
		size := info.Size()
		if entry.IsDir() {
			size, _ = dirSize(path)
		}
		captures = append(captures, Capture{
			Name:    entry.Name(),
			Path:    path,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	sort.Slice(captures, func(i, j int) bool {
		return captures[i].ModTime.Before(captures[j].ModTime)
	})
	return captures, nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // best effort
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
