// Package main hosts the twisty CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into export runs,
// batch runs over a CSV table, history listings, preflight checks, and
// configuration scaffolding. It centralizes configuration resolution, .env
// loading, the capture lock, and logger setup so subcommands can focus on
// their own behavior.
//
// The export command hands its raw tokens to the option resolver instead of
// Cobra's flag parser, because job options accept unquoted multi-word values
// such as "--alg R U R' U'".
package main
