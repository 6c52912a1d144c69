// Package blackdetect measures black frames at the very start of a raw
// capture with ffmpeg's blackdetect filter, so the transcode can skip the
// blank frames Chromium records before the first paint.
//
// The measured value is clamped and a safety ceiling discards readings that
// are too long to be a blank warm-up.
package blackdetect
