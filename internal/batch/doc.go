// Package batch reads a CSV table of exports and runs them one at a time.
//
// The header row names per-job option keys (alg, name, notation, puzzle,
// speedFast, speedSlow, repeats, bg, bgImage, bgVideo, out, trimStart,
// tailPad). Each data row becomes the option tokens of one export; the first
// failing row stops the batch.
package batch
