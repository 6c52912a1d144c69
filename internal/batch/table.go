package batch

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"twisty/internal/job"
	"twisty/internal/services"
	"twisty/internal/slug"
)

// Row is one table line keyed by header name.
type Row struct {
	// Line is the 1-based line number in the source file.
	Line   int
	Values map[string]string
}

// Get returns the trimmed cell for key, or "".
func (r Row) Get(key string) string {
	return strings.TrimSpace(r.Values[key])
}

// Name is the label used for progress lines.
func (r Row) Name() string {
	if name := r.Get(job.KeyName); name != "" {
		return name
	}
	return r.Get(job.KeyAlg)
}

// Output returns the out cell, or a path derived from the name or alg next
// to the default output.
func (r Row) Output(d job.Defaults) string {
	if out := r.Get(job.KeyOut); out != "" {
		return out
	}
	dir := "out"
	if d.Output != "" {
		dir = filepath.Dir(d.Output)
	}
	return filepath.Join(dir, slug.Make(r.Name())+".mp4")
}

// Tokens renders the row as option tokens for one export. Blank cells take
// the defaults; optional media and trim options are only emitted when set.
func (r Row) Tokens(d job.Defaults) []string {
	alg := r.Get(job.KeyAlg)
	tokens := []string{
		option(job.KeyAlg, alg),
		option(job.KeyName, r.Get(job.KeyName)),
		option(job.KeyNotation, orDefault(r.Get(job.KeyNotation), alg)),
		option(job.KeyPuzzle, orDefault(r.Get(job.KeyPuzzle), d.Puzzle)),
		option(job.KeySpeedFast, orDefault(r.Get(job.KeySpeedFast), d.SpeedFast)),
		option(job.KeySpeedSlow, orDefault(r.Get(job.KeySpeedSlow), d.SpeedSlow)),
		option(job.KeyRepeats, orDefault(r.Get(job.KeyRepeats), d.Repeats)),
		option(job.KeyBg, orDefault(r.Get(job.KeyBg), d.Background)),
		option(job.KeyOut, r.Output(d)),
	}
	for _, key := range []string{job.KeyBgImage, job.KeyBgVideo, job.KeyTrimStart, job.KeyTailPad} {
		if v := r.Get(key); v != "" {
			tokens = append(tokens, option(key, v))
		}
	}
	return tokens
}

func option(key, value string) string {
	return "--" + key + "=" + value
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

// ReadFile parses the table at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "batch", "read table", path, err)
		}
		return nil, fmt.Errorf("open batch table: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a table. Blank lines and lines starting with # are skipped;
// missing trailing cells read as empty.
func Read(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "batch", "read header", "", err)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "batch", "read row", "", err)
		}
		if blankRecord(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		row := Row{Line: line, Values: make(map[string]string, len(keys))}
		for i, key := range keys {
			if key == "" {
				continue
			}
			if i < len(record) {
				row.Values[key] = strings.TrimSpace(record[i])
			} else {
				row.Values[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
