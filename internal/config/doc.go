// Package config loads, normalizes, and validates twisty configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// export pipeline and CLI need: renderer endpoint and readiness timing, capture
// geometry, black-detection heuristics, encoder settings, and the job defaults
// applied when an option is not supplied.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
