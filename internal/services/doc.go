// Package services defines shared utilities consumed by the export pipeline
// stages and the external tools they drive.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, job names, and stage names for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     (timeouts, external tool failures, validation) for the history ledger.
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
