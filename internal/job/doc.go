// Package job defines the ExportJob value object and resolves it from parsed
// command options, config-driven defaults, and the environment.
//
// Resolution never fails: malformed numeric values degrade to their defaults
// with a warning. Validate enforces the few invariants the pipeline relies on
// before any browser is launched.
package job
