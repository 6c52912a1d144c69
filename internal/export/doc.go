// Package export runs one resolved job end to end: prepare directories,
// record the rendered page, measure leading black, transcode, and record
// the outcome in the history ledger.
//
// Stages run strictly in sequence. Browser resources are released on every
// exit path, including readiness timeouts and cancellation.
package export
