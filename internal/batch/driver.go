package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"twisty/internal/job"
	"twisty/internal/logging"
)

// RunFunc exports one row given its option tokens.
type RunFunc func(ctx context.Context, row Row, tokens []string) error

// Summary reports how far a batch got.
type Summary struct {
	Total     int
	Completed int
	Elapsed   time.Duration
}

// Driver runs rows sequentially.
type Driver struct {
	run      RunFunc
	defaults job.Defaults
	logger   *slog.Logger
}

// NewDriver constructs a batch driver.
func NewDriver(run RunFunc, defaults job.Defaults, logger *slog.Logger) *Driver {
	return &Driver{
		run:      run,
		defaults: defaults,
		logger:   logging.NewComponentLogger(logger, "batch"),
	}
}

// Run exports every row in order and stops at the first failure, returning
// it annotated with the row position and source line.
func (d *Driver) Run(ctx context.Context, rows []Row) (Summary, error) {
	started := time.Now()
	summary := Summary{Total: len(rows)}
	d.logger.Info("batch started", logging.Int("exports", len(rows)))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(started)
			return summary, err
		}
		d.logger.Info(fmt.Sprintf("[%d/%d] %s", i+1, len(rows), row.Name()),
			logging.Int("line", row.Line),
		)
		if err := d.run(ctx, row, row.Tokens(d.defaults)); err != nil {
			summary.Elapsed = time.Since(started)
			return summary, fmt.Errorf("row %d/%d (line %d, %q): %w", i+1, len(rows), row.Line, row.Name(), err)
		}
		summary.Completed++
	}

	summary.Elapsed = time.Since(started)
	d.logger.Info("batch complete",
		logging.Int("exports", summary.Completed),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}
