// Package options aggregates raw command tokens into named option values.
//
// Shells (PowerShell in particular) split quoted move sequences into several
// tokens, so a flag keeps absorbing unflagged tokens until the next flag.
// Values are tagged: a flag with no content is a Flag, anything else is Text.
// Lookups fall back to a namespaced environment variable and then to the
// caller's default; resolution never fails.
package options
