// Package preflight provides readiness checks for the external tools, the
// renderer page, and the filesystem paths twisty depends on.
//
// These checks run in two contexts:
//   - The export and batch commands call RunAll before launching a browser,
//     so a missing ffmpeg or a stopped dev server fails in seconds instead of
//     after a full recording.
//   - The CLI "twisty check" command prints every result, including the
//     binary checks from CheckSystemDeps.
package preflight
